package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"storyline/app/repositories"
)

// HandleCommand handles cms subcommands and returns an exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printCmsHelp()
		osExit(1)
		return 1
	}

	cmd := args[0]
	switch cmd {
	case "clean":
		return clean()
	case "init":
		return initDb()
	case "backup":
		return backup()
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			osExit(1)
			return 1
		}
		return restore(args[1])
	case "seed":
		if len(args) < 2 {
			fmt.Println("Error: seed file path required for seed")
			osExit(1)
			return 1
		}
		return seed(args[1])
	case "pending":
		return pending()
	case "approve":
		if len(args) < 2 {
			fmt.Println("Error: comment id required for approve")
			osExit(1)
			return 1
		}
		return approve(args[1])
	case "help":
		printCmsHelp()
		return 0
	default:
		fmt.Printf("Unknown cms command: %s\n\n", cmd)
		printCmsHelp()
		osExit(1)
		return 1
	}
}

// printCmsHelp prints help for cms subcommands.
func printCmsHelp() {
	helpText := `Usage: storyline cms

Commands:
  init                            Initialize a new empty content store
  clean                           Remove the content store
  backup                          Create a backup of the content store
  restore [file]                  Restore the content store from backup
  seed [file]                     Load authors, posts and comments from YAML
  pending                         List comments awaiting approval
  approve [id]                    Approve a comment so it appears on its post
  help                            Display this help message
`
	fmt.Println(helpText)
}

// clean removes the database.
func clean() int {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}

	fmt.Print("Are you sure you want to clean the database? This cannot be undone. [y/N] ")
	var response string
	fmt.Scanln(&response)
	if response != "y" && response != "Y" {
		fmt.Println("Operation cancelled")
		return 1
	}

	if err := os.RemoveAll(dbPath); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// initDb initializes a new empty database.
func initDb() int {
	if _, err := os.Stat(dbPath); err == nil {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 1
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	store, err := repositories.Open(dbPath)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer store.Close()

	fmt.Println("Database initialized successfully")
	return 0
}

// backup creates a backup of the database.
func backup() int {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return 1
	}

	dir := backupDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	store, err := repositories.Open(dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := store.Backup(f); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore restores the database from a backup.
func restore(backupFile string) int {
	if _, err := os.Stat(backupFile); os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}

	if _, err := os.Stat(dbPath); err == nil {
		fmt.Print("Existing database found. Do you want to replace it? [y/N] ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(dbPath); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	store, err := repositories.Open(dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return store.Load(f)
	}()
	if err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}

// seed loads a YAML seed file into the database, creating it if needed.
func seed(seedFile string) int {
	f, err := os.Open(seedFile)
	if err != nil {
		fmt.Printf("Failed to open seed file: %v\n", err)
		return 1
	}
	defer f.Close()

	data, err := repositories.ReadSeed(f)
	if err != nil {
		fmt.Printf("Failed to read seed file: %v\n", err)
		return 1
	}

	store, err := repositories.Open(dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	if err := store.Apply(data); err != nil {
		fmt.Printf("Failed to seed database: %v\n", err)
		return 1
	}
	fmt.Printf("Seeded %d authors, %d posts and %d comments\n", len(data.Authors), len(data.Posts), len(data.Comments))
	return 0
}

// pending lists comments awaiting moderation.
func pending() int {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No database exists")
		return 1
	}
	store, err := repositories.Open(dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	comments, err := store.Comments.ListPending()
	if err != nil {
		fmt.Printf("Failed to list comments: %v\n", err)
		return 1
	}
	if len(comments) == 0 {
		fmt.Println("No comments awaiting approval")
		return 0
	}
	for _, c := range comments {
		fmt.Printf("%s  post=%s  %s <%s>: %s\n", c.ID, c.Post.Ref, c.Name, c.Email, c.Comment)
	}
	return 0
}

// approve makes a comment visible. Pages pick it up on their next regeneration.
func approve(id string) int {
	store, err := repositories.Open(dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer store.Close()

	if err := store.Comments.Approve(id); err != nil {
		fmt.Printf("Failed to approve comment %s: %v\n", id, err)
		return 1
	}
	fmt.Printf("Comment %s approved\n", id)
	return 0
}
