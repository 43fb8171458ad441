package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-livesite"
	"github.com/goliatone/go-livesite/internal/commands"
	"github.com/goliatone/go-livesite/internal/logging"
	"github.com/goliatone/go-livesite/internal/session"
)

var moduleBuilder = buildModule

var errUsage = errors.New("usage: livesite [flags] catalog|themes|resolve|apply-theme|reset-theme|create-page")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("livesite: %v", err)
	}
}

func buildModule(configPath string) (*livesite.Module, error) {
	cfg := livesite.DefaultConfig()
	if strings.TrimSpace(configPath) != "" {
		loaded, err := livesite.LoadConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	return livesite.New(cfg)
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("livesite", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	tenant := fs.String("tenant", "", "Tenant key of the site")
	theme := fs.String("theme", "", "Theme name for apply-theme and reset-theme (defaults to themes.default_theme)")
	page := fs.String("page", "", "Page slug for resolve (empty is the homepage)")
	anyPage := fs.Bool("any-page", false, "Search every page when resolving")
	family := fs.String("family", "", "Component family for resolve")
	variant := fs.String("variant", "", "Component variant for resolve")
	instance := fs.String("instance", "", "Component instance id for resolve")
	title := fs.String("title", "", "Page title for create-page")
	slug := fs.String("slug", "", "Page slug for create-page")
	save := fs.Bool("save", true, "Persist the document after create-page")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}

	module, err := moduleBuilder(*configPath)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	if strings.TrimSpace(*theme) == "" {
		*theme = module.Container().DefaultTheme()
	}

	ctx := context.Background()
	logger := commands.CommandLogger(module.Container().LoggerProvider(), "cli")
	sessions := module.Container()

	switch fs.Arg(0) {
	case "themes":
		bundles, err := module.Themes(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, bundles)

	case "catalog":
		s, err := module.OpenSession(ctx, *tenant)
		if err != nil {
			return err
		}
		return writeJSON(out, s.Catalog())

	case "resolve":
		s, err := module.OpenSession(ctx, *tenant)
		if err != nil {
			return err
		}
		req := session.ResolveRequest{
			Family:     *family,
			Variant:    *variant,
			InstanceID: *instance,
		}
		if !*anyPage {
			req.Page = page
		}
		return writeJSON(out, s.Resolve(req))

	case "apply-theme":
		handler := commands.NewApplyThemeHandler(sessions, logger)
		if err := handler.Execute(ctx, commands.ApplyThemeCommand{TenantKey: *tenant, Theme: *theme}); err != nil {
			return fmt.Errorf("execute apply-theme command: %w", err)
		}
		return writeSnapshot(ctx, out, module, *tenant)

	case "reset-theme":
		handler := commands.NewResetThemeHandler(sessions, logger)
		if err := handler.Execute(ctx, commands.ResetThemeCommand{TenantKey: *tenant, Theme: *theme}); err != nil {
			return fmt.Errorf("execute reset-theme command: %w", err)
		}
		return writeSnapshot(ctx, out, module, *tenant)

	case "create-page":
		handler := commands.NewCreatePageHandler(sessions, logger)
		if err := handler.Execute(ctx, commands.CreatePageCommand{TenantKey: *tenant, Title: *title, Slug: *slug, Save: *save}); err != nil {
			return fmt.Errorf("execute create-page command: %w", err)
		}
		s, err := module.OpenSession(ctx, *tenant)
		if err != nil {
			return err
		}
		s.Wait()
		return writeJSON(out, s.Catalog())

	default:
		logging.WithFields(logger, map[string]any{"command": fs.Arg(0)}).Warn("cli.unknown_command")
		return errUsage
	}
}

func writeSnapshot(ctx context.Context, out io.Writer, module *livesite.Module, tenant string) error {
	s, err := module.OpenSession(ctx, tenant)
	if err != nil {
		return err
	}
	snapshot, ok := s.Snapshot()
	if !ok {
		return fmt.Errorf("no snapshot for tenant %q", tenant)
	}
	return writeJSON(out, snapshot)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
