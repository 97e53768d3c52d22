package mirror_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/aretw0/mirror"
	"github.com/aretw0/mirror/pkg/core"
)

// Example_basic saves a document through the service and reads it back.
func Example_basic() {
	dir, err := os.MkdirTemp("", "mirror-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	svc, err := mirror.New(dir)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	err = svc.SaveDocument(ctx, "hello-world", "First document.", core.Metadata{
		"tags": []string{"example"},
	})
	if err != nil {
		log.Fatal(err)
	}

	doc, err := svc.GetDocument(ctx, "hello-world")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Found document: %s\n", doc.ID)
	// Output:
	// Found document: hello-world
}

// Example_sync picks up a file written by another program.
func Example_sync() {
	dir, err := os.MkdirTemp("", "mirror-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	svc, err := mirror.New(dir)
	if err != nil {
		log.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "external.md"), []byte("from outside"), 0644); err != nil {
		log.Fatal(err)
	}

	report, err := svc.Sync(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	for _, path := range core.NewSyncResult(report).New {
		fmt.Println(filepath.Base(path))
	}
	// Output:
	// external.md
}
