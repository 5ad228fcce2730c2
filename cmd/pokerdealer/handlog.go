package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lox/pokerdealer/internal/handlog"
)

// HandLogCmd prints a hand log written by the server.
type HandLogCmd struct {
	File string `kong:"arg,type='existingfile',help='Hand log TOML file'"`
	JSON bool   `kong:"help='Print as JSON'"`
}

func (c *HandLogCmd) Run() error {
	entry, err := handlog.Load(c.File)
	if err != nil {
		return err
	}
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	}
	fmt.Println(renderLastHand(entry))
	return nil
}
