package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"storyline/app/config"
	"storyline/app/logging"
	"storyline/service"
)

const CliVersion = "1.0.0"

// exit is replaced in tests.
var exit = os.Exit

func main() {
	RealMain()
}

// RealMain dispatches os.Args and exits with the command's status.
func RealMain() {
	if len(os.Args) < 2 {
		printHelp()
		exit(1)
		return
	}

	cmd := strings.ToLower(os.Args[1])
	args := os.Args[2:]
	switch cmd {
	case "help":
		printHelp()
	case "version":
		fmt.Printf("storyline version %s\n", CliVersion)
	case "comment":
		cfg := loadConfig()
		exit(service.RunComment(args, newLogger(cfg), os.Stdout))
	case "serve":
		cfg := loadConfig()
		exit(service.RunServe(cfg, newLogger(cfg)))
	case "build":
		if len(args) < 1 {
			fmt.Println("Error: output directory required for build command")
			exit(1)
			return
		}
		cfg := loadConfig()
		exit(service.RunBuild(cfg, newLogger(cfg), args))
	case "paths":
		cfg := loadConfig()
		exit(service.RunPaths(cfg, newLogger(cfg)))
	case "cms":
		service.Configure(loadConfig())
		exit(service.HandleCommand(args))
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printHelp()
		exit(1)
	}
}

func printHelp() {
	helpText := `Usage: storyline <command> [options]
Commands:
  help                           Display this help message.
  version                        Show version information.
  serve                          Prerender all posts and run the blog service.
  build <output_directory>       Write every post page and the static assets to a directory.
  paths                          List the slugs of all posts.
  comment [flags]                Submit a comment to a running server (-url -post -name -email -comment).
  cms <command>                  Maintain the local content store (init, clean, backup, restore, seed, pending, approve).
`
	fmt.Println(helpText)
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		exit(1)
	}
	return cfg
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(os.Stderr, cfg.Env, cfg.SlogLevel())
}
