package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chairlinked/api/internal/domain"
	"github.com/chairlinked/api/internal/theme"
)

// selectionFlags chooses the design system a command works on.
type selectionFlags struct {
	theme          string
	industry       string
	beauty         string
	brandPrimary   string
	brandSecondary string
	brandAccent    string
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.theme, "theme", "industry", "Section theme: industry or beauty")
	cmd.Flags().StringVar(&f.industry, "industry", string(theme.DefaultIndustry), "Industry id for the industry theme")
	cmd.Flags().StringVar(&f.beauty, "beauty", string(theme.DefaultBeauty), "Salon type for the beauty theme")
	cmd.Flags().StringVar(&f.brandPrimary, "brand-primary", "", "Brand primary color (hex)")
	cmd.Flags().StringVar(&f.brandSecondary, "brand-secondary", "", "Brand secondary color (hex)")
	cmd.Flags().StringVar(&f.brandAccent, "brand-accent", "", "Brand accent color (hex)")
}

func (f *selectionFlags) request() (theme.StylesheetRequest, error) {
	brand := domain.BrandColors{
		Primary:   strings.TrimSpace(f.brandPrimary),
		Secondary: strings.TrimSpace(f.brandSecondary),
		Accent:    strings.TrimSpace(f.brandAccent),
	}
	if err := domain.Validator().Struct(brand); err != nil {
		return theme.StylesheetRequest{}, fmt.Errorf("brand colors must be hex values: %w", err)
	}

	selected := theme.ParseSectionTheme(f.theme)
	switch selected {
	case theme.SectionThemeIndustry:
		if _, ok := theme.NormalizeIndustry(f.industry); !ok {
			return theme.StylesheetRequest{}, fmt.Errorf("unknown industry %q", f.industry)
		}
	case theme.SectionThemeBeauty:
		if !knownBeauty(f.beauty) {
			return theme.StylesheetRequest{}, fmt.Errorf("unknown beauty theme %q", f.beauty)
		}
	default:
		return theme.StylesheetRequest{}, fmt.Errorf("theme must be industry or beauty, got %q", f.theme)
	}

	return theme.StylesheetRequest{
		Theme:    selected,
		Industry: f.industry,
		BeautyID: f.beauty,
		Brand:    brand,
	}, nil
}

func knownBeauty(raw string) bool {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
	for _, id := range theme.ListBeautyConfigs() {
		if string(id) == key {
			return true
		}
	}
	return false
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "themegen",
		Short:         "Generate theme CSS and font URLs for published demo sites",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newCSSCmd())
	cmd.AddCommand(newFontsCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// writeOutput writes to path, or to the command's stdout when path is empty or "-".
func writeOutput(cmd *cobra.Command, path, body string) error {
	path = strings.TrimSpace(path)
	if path == "" || path == "-" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), body)
		return err
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", path, len(body))
	return nil
}
