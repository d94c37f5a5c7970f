package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/chairlinked/api/internal/domain"
	pfirestore "github.com/chairlinked/api/internal/platform/firestore"
	"github.com/chairlinked/api/internal/platform/pagination"
	"github.com/chairlinked/api/internal/repositories"
)

const defaultDemosCollection = "demos"

// DemoRepository persists demos in Firestore. PageData is stored as a nested map
// so the console shows readable documents.
type DemoRepository struct {
	provider *pfirestore.Provider
	demos    *pfirestore.Collection[demoDocument]
	txOpts   []pfirestore.TxOption
}

var _ repositories.DemoRepository = (*DemoRepository)(nil)

// NewDemoRepository constructs a Firestore-backed demo repository. An empty
// collection name uses "demos". txOpts apply to updates and deletes.
func NewDemoRepository(provider *pfirestore.Provider, collection string, txOpts ...pfirestore.TxOption) (*DemoRepository, error) {
	if provider == nil {
		return nil, errors.New("demo repository: firestore provider is required")
	}
	if strings.TrimSpace(collection) == "" {
		collection = defaultDemosCollection
	}
	return &DemoRepository{
		provider: provider,
		demos:    pfirestore.NewCollection[demoDocument](provider, collection),
		txOpts:   txOpts,
	}, nil
}

func (r *DemoRepository) Insert(ctx context.Context, demo domain.Demo) error {
	id := strings.TrimSpace(demo.ID)
	if id == "" {
		return errors.New("demo repository: demo id is required")
	}
	doc, err := encodeDemo(demo)
	if err != nil {
		return err
	}
	_, err = r.demos.Create(ctx, id, doc)
	return err
}

// Update replaces the stored demo inside a transaction so a concurrent delete
// cannot be resurrected. CreatedAt is preserved from the stored document.
func (r *DemoRepository) Update(ctx context.Context, demo domain.Demo) error {
	id := strings.TrimSpace(demo.ID)
	if id == "" {
		return errors.New("demo repository: demo id is required")
	}
	doc, err := encodeDemo(demo)
	if err != nil {
		return err
	}
	ref, err := r.demos.Ref(ctx, id)
	if err != nil {
		return err
	}

	return r.provider.RunTransaction(ctx, "demos.update", func(ctx context.Context, tx *firestore.Transaction) error {
		current, err := r.liveInTx(tx, ref, "demos.update")
		if err != nil {
			return err
		}
		doc.CreatedAt = current.CreatedAt
		return tx.Set(ref, doc)
	}, r.txOpts...)
}

func (r *DemoRepository) SoftDelete(ctx context.Context, demoID string, deletedAt time.Time) error {
	ref, err := r.demos.Ref(ctx, strings.TrimSpace(demoID))
	if err != nil {
		return err
	}
	deletedAt = deletedAt.UTC()

	return r.provider.RunTransaction(ctx, "demos.soft_delete", func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := r.liveInTx(tx, ref, "demos.soft_delete"); err != nil {
			return err
		}
		return tx.Update(ref, []firestore.Update{
			{Path: "deleted", Value: true},
			{Path: "deletedAt", Value: deletedAt},
			{Path: "updatedAt", Value: deletedAt},
		})
	}, r.txOpts...)
}

func (r *DemoRepository) liveInTx(tx *firestore.Transaction, ref *firestore.DocumentRef, op string) (demoDocument, error) {
	snap, err := tx.Get(ref)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return demoDocument{}, pfirestore.NotFound(op, fmt.Errorf("demo %s not found", ref.ID))
		}
		return demoDocument{}, err
	}
	decoded, err := r.demos.Decode(snap)
	if err != nil {
		return demoDocument{}, err
	}
	if decoded.Data.Deleted {
		return demoDocument{}, pfirestore.NotFound(op, fmt.Errorf("demo %s deleted", ref.ID))
	}
	return decoded.Data, nil
}

func (r *DemoRepository) FindByID(ctx context.Context, demoID string) (domain.Demo, error) {
	demoID = strings.TrimSpace(demoID)
	doc, err := r.demos.Get(ctx, demoID)
	if err != nil {
		return domain.Demo{}, err
	}
	if doc.Data.Deleted {
		return domain.Demo{}, pfirestore.NotFound("demos.get", fmt.Errorf("demo %s deleted", demoID))
	}
	return decodeDemo(doc.ID, doc.Data)
}

// ListByOwner returns live demos ordered by most recent update.
func (r *DemoRepository) ListByOwner(ctx context.Context, ownerID string, filter repositories.DemoListFilter) (domain.CursorPage[domain.Demo], error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.CursorPage[domain.Demo]{}, errors.New("demo repository: owner id is required")
	}
	limit := filter.Pagination.PageSize
	if limit <= 0 {
		limit = pagination.DefaultPageSize
	}
	cursor := filter.Pagination.Cursor

	docs, err := r.demos.Query(ctx, func(q firestore.Query) firestore.Query {
		q = q.Where("ownerId", "==", ownerID).Where("deleted", "==", false)
		if filter.Status != "" {
			q = q.Where("status", "==", string(filter.Status))
		}
		q = q.OrderBy("updatedAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Asc)
		if !cursor.IsZero() {
			q = q.StartAfter(cursor.UpdatedAt.UTC(), cursor.ID)
		}
		return q.Limit(limit + 1)
	})
	if err != nil {
		return domain.CursorPage[domain.Demo]{}, err
	}

	page := domain.CursorPage[domain.Demo]{}
	if len(docs) > limit {
		last := docs[limit-1]
		token, err := pagination.EncodeToken(filter.Pagination.Next(pagination.Cursor{UpdatedAt: last.Data.UpdatedAt, ID: last.ID}))
		if err != nil {
			return page, err
		}
		page.NextPageToken = token
		docs = docs[:limit]
	}

	page.Items = make([]domain.Demo, 0, len(docs))
	for _, doc := range docs {
		demo, err := decodeDemo(doc.ID, doc.Data)
		if err != nil {
			return domain.CursorPage[domain.Demo]{}, err
		}
		page.Items = append(page.Items, demo)
	}
	return page, nil
}

type demoDocument struct {
	OwnerID      string         `firestore:"ownerId"`
	Slug         string         `firestore:"slug"`
	Title        string         `firestore:"title"`
	Industry     string         `firestore:"industry"`
	Status       string         `firestore:"status"`
	Data         map[string]any `firestore:"data"`
	PublishedURL string         `firestore:"publishedUrl,omitempty"`
	Deleted      bool           `firestore:"deleted"`
	CreatedAt    time.Time      `firestore:"createdAt"`
	UpdatedAt    time.Time      `firestore:"updatedAt"`
	PublishedAt  *time.Time     `firestore:"publishedAt,omitempty"`
	DeletedAt    *time.Time     `firestore:"deletedAt,omitempty"`
}

func encodeDemo(demo domain.Demo) (demoDocument, error) {
	data, err := pageDataToMap(demo.Data)
	if err != nil {
		return demoDocument{}, err
	}
	return demoDocument{
		OwnerID:      strings.TrimSpace(demo.OwnerID),
		Slug:         strings.TrimSpace(demo.Slug),
		Title:        strings.TrimSpace(demo.Title),
		Industry:     strings.TrimSpace(demo.Industry),
		Status:       string(demo.Status),
		Data:         data,
		PublishedURL: strings.TrimSpace(demo.PublishedURL),
		Deleted:      demo.DeletedAt != nil,
		CreatedAt:    demo.CreatedAt.UTC(),
		UpdatedAt:    demo.UpdatedAt.UTC(),
		PublishedAt:  utcPointer(demo.PublishedAt),
		DeletedAt:    utcPointer(demo.DeletedAt),
	}, nil
}

func decodeDemo(id string, doc demoDocument) (domain.Demo, error) {
	data, err := mapToPageData(doc.Data)
	if err != nil {
		return domain.Demo{}, fmt.Errorf("demo repository: decode %s: %w", id, err)
	}
	status := domain.DemoStatus(doc.Status)
	if status == "" {
		status = domain.DemoStatusDraft
	}
	return domain.Demo{
		ID:           id,
		OwnerID:      doc.OwnerID,
		Slug:         doc.Slug,
		Title:        doc.Title,
		Industry:     doc.Industry,
		Data:         data,
		Status:       status,
		PublishedURL: doc.PublishedURL,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
		PublishedAt:  utcPointer(doc.PublishedAt),
		DeletedAt:    utcPointer(doc.DeletedAt),
	}, nil
}

// pageDataToMap reuses the JSON field names as Firestore keys.
func pageDataToMap(data domain.PageData) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("demo repository: encode page data: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("demo repository: encode page data: %w", err)
	}
	return out, nil
}

func mapToPageData(m map[string]any) (domain.PageData, error) {
	var data domain.PageData
	if len(m) == 0 {
		return data, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return data, err
	}
	err = json.Unmarshal(raw, &data)
	return data, err
}

func utcPointer(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.UTC()
	return &v
}
