// Command palettectl browses the color catalog and stashes and maintains palettes.
package main

import (
	"errors"
	"io/fs"
	"log"
	"palettecore/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// A .env file is optional; variables already set in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}
	cli.Run()
}
