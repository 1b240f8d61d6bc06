package main

import (
	"bytes"
	"log"
	"os"

	"github.com/keshon/genesis/internal/command"
	"github.com/keshon/genesis/internal/commands"
	"github.com/keshon/genesis/internal/config"
	"github.com/keshon/genesis/internal/docs"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	// Definitions only: no command is executed, so no collaborators are needed.
	loader := commands.NewLoader(command.NewRegistry(), commands.Deps{})
	sections := docs.CommandSections(loader.Builtins(), cfg.Prefix, config.CategoryWeights)

	tmplData, err := os.ReadFile("README.md.tmpl")
	if err != nil {
		log.Fatal(err)
	}

	var out bytes.Buffer
	if err := docs.Render(&out, string(tmplData), sections); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("README.md", out.Bytes(), 0644); err != nil {
		log.Fatal(err)
	}
	log.Println("[INFO] README.md updated with current commands")
}
