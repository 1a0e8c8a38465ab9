package service

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"storyline/app/config"
	"storyline/app/form"
)

// RunServe starts the blog service and blocks until SIGINT or SIGTERM.
func RunServe(cfg *config.Config, logger *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	defer app.Close()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Error("listen failed", "addr", cfg.Addr, "error", err)
		return 1
	}
	if err := app.Serve(ctx, ln); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

// RunBuild writes the static site to the directory in args.
func RunBuild(cfg *config.Config, logger *slog.Logger, args []string) int {
	if len(args) < 1 {
		fmt.Println("Error: output directory required for build")
		return 1
	}
	ctx := context.Background()
	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	defer app.Close()

	result, err := app.Build(ctx, args[0])
	if err != nil {
		fmt.Printf("Build failed: %v\n", err)
		return 1
	}
	fmt.Printf("Built %d pages into %s\n", len(result.Generated), args[0])
	if len(result.Failed) > 0 {
		slugs := make([]string, 0, len(result.Failed))
		for slug := range result.Failed {
			slugs = append(slugs, slug)
		}
		sort.Strings(slugs)
		for _, slug := range slugs {
			fmt.Printf("  failed %s: %v\n", slug, result.Failed[slug])
		}
		return 1
	}
	return 0
}

// RunPaths prints every discovered slug.
func RunPaths(cfg *config.Config, logger *slog.Logger) int {
	ctx := context.Background()
	app, err := NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return 1
	}
	defer app.Close()

	slugs, err := app.Pages.Paths(ctx)
	if err != nil {
		fmt.Printf("Failed to discover paths: %v\n", err)
		return 1
	}
	for _, slug := range slugs {
		fmt.Println(slug)
	}
	return 0
}

// RunComment submits one comment to a running server through the form flow.
func RunComment(args []string, logger *slog.Logger, stdout io.Writer) int {
	fs := flag.NewFlagSet("comment", flag.ContinueOnError)
	fs.SetOutput(stdout)
	url := fs.String("url", "http://localhost:8080/api/createComment", "comment endpoint")
	post := fs.String("post", "", "parent post _id")
	name := fs.String("name", "", "your name")
	email := fs.String("email", "", "your email")
	comment := fs.String("comment", "", "the comment")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	session := form.NewSession(&form.HTTPSubmitter{URL: *url}, logger)
	err := session.Submit(context.Background(), form.Input{
		ID:      *post,
		Name:    *name,
		Email:   *email,
		Comment: *comment,
	})
	if err != nil {
		fmt.Fprintf(stdout, "Comment not submitted: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, "Thank you for submitting. Once it's been approved it will show up.")
	return 0
}
