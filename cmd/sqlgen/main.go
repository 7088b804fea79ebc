// Command sqlgen compiles a schema file into migrations and typed Go
// accessors over the sqlite package.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/weftdb/sqlite/schemagen"
)

var CLI struct {
	Generate GenerateCmd `cmd:"" help:"Compile a schema file into a Go source file"`
	Check    CheckCmd    `cmd:"" help:"Validate a schema file without generating code"`
}

type GenerateCmd struct {
	Schema  string `arg:"" help:"Schema file to compile" type:"existingfile"`
	Out     string `short:"o" help:"Output file (default stdout)" type:"path"`
	Package string `short:"p" default:"db" help:"Package name for the generated file"`
}

func (c *GenerateCmd) Run() error {
	schema, err := parseFile(c.Schema)
	if err != nil {
		return err
	}
	src, err := schemagen.Generate(schema, c.Package)
	if err != nil {
		return err
	}
	if c.Out == "" {
		_, err = os.Stdout.Write(src)
		return err
	}
	return os.WriteFile(c.Out, src, 0o644)
}

type CheckCmd struct {
	Schema string `arg:"" help:"Schema file to validate" type:"existingfile"`
}

func (c *CheckCmd) Run() error {
	schema, err := parseFile(c.Schema)
	if err != nil {
		return err
	}
	if err := schemagen.Check(schema); err != nil {
		return err
	}
	fmt.Printf("%s: ok\n", c.Schema)
	return nil
}

func parseFile(path string) (*schemagen.Schema, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return schemagen.Parse(path, string(source))
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("sqlgen"),
		kong.Description("Schema compiler for the sqlite access layer."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
