// Package main validates a battle content tree: YAML shape, value
// invariants, and the cross-references between opponent templates,
// archetypes, and behavior profiles.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kverkest/fray/internal/battleserver"
)

func main() {
	contentDir := flag.String("content", "content", "path to the content directory")
	flag.Parse()

	start := time.Now()
	content, err := battleserver.LoadContent(*contentDir, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("content ok in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("  arenas:    %d\n", len(content.Arenas))
	fmt.Printf("  opponents: %d\n", len(content.Templates))
	fmt.Printf("  party:     %s + %d followers\n", content.Party.Leader.Name, len(content.Party.Followers))
	for _, tmpl := range content.Templates {
		fmt.Printf("  %-16s level %d, archetype %s, profile %s\n",
			tmpl.ID, tmpl.Level, tmpl.Archetype, tmpl.Profile)
	}
}
