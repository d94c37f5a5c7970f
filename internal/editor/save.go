package editor

import (
	"strings"
)

// SaveButtonDisabled reports whether the explicit save action must be blocked.
func SaveButtonDisabled(saving, autoSaving, authLoading bool) bool {
	return saving || autoSaving || authLoading
}

// SaveErrorKind classifies a failed save for user feedback.
type SaveErrorKind string

const (
	SaveErrorAuth       SaveErrorKind = "auth"
	SaveErrorValidation SaveErrorKind = "validation"
	SaveErrorPermission SaveErrorKind = "permission"
	SaveErrorNetwork    SaveErrorKind = "network"
	SaveErrorUnknown    SaveErrorKind = "unknown"
)

// Toast is a user-facing notification.
type Toast struct {
	Kind        SaveErrorKind `json:"kind,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Destructive bool          `json:"destructive"`
}

var authTerms = []string{
	"unauthenticated",
	"not authenticated",
	"authentication",
	"unauthorized",
	"requires auth",
	"auth required",
	"sign in",
	"signed in",
	"login",
}

var saveErrorToasts = map[SaveErrorKind]Toast{
	SaveErrorAuth: {
		Kind:        SaveErrorAuth,
		Title:       "Authentication required",
		Description: "Please sign in to save your demo.",
		Destructive: true,
	},
	SaveErrorValidation: {
		Kind:        SaveErrorValidation,
		Title:       "Validation error",
		Description: "Some fields are invalid. Please review your content and try again.",
		Destructive: true,
	},
	SaveErrorPermission: {
		Kind:        SaveErrorPermission,
		Title:       "Permission denied",
		Description: "You don't have permission to save this demo.",
		Destructive: true,
	},
	SaveErrorNetwork: {
		Kind:        SaveErrorNetwork,
		Title:       "Network error",
		Description: "Unable to reach the server. Check your connection and try again.",
		Destructive: true,
	},
}

// ClassifySaveMessage maps a save failure message to its category.
func ClassifySaveMessage(message string) SaveErrorKind {
	msg := strings.ToLower(message)
	for _, term := range authTerms {
		if strings.Contains(msg, term) {
			return SaveErrorAuth
		}
	}
	switch {
	case strings.Contains(msg, "validation"):
		return SaveErrorValidation
	case strings.Contains(msg, "permission"):
		return SaveErrorPermission
	case strings.Contains(msg, "network"), strings.Contains(msg, "fetch"):
		return SaveErrorNetwork
	default:
		return SaveErrorUnknown
	}
}

// ClassifySaveError builds the toast shown for a failed save.
func ClassifySaveError(err error) Toast {
	if err == nil {
		return ClassifySaveMessageToast("")
	}
	return ClassifySaveMessageToast(err.Error())
}

// ClassifySaveMessageToast builds the toast for a raw failure message.
func ClassifySaveMessageToast(message string) Toast {
	kind := ClassifySaveMessage(message)
	if toast, ok := saveErrorToasts[kind]; ok {
		return toast
	}
	desc := strings.TrimSpace(message)
	if desc == "" {
		desc = "An unexpected error occurred while saving."
	}
	return Toast{Kind: SaveErrorUnknown, Title: "Save failed", Description: desc, Destructive: true}
}

// SavedToast is shown after a successful save.
func SavedToast() Toast {
	return Toast{Title: "Demo saved", Description: "Your changes have been saved."}
}
