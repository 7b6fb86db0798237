package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/idwallet/lwsd/internal/core/domain"
)

var schemaCmd = cli.Command{
	Name:  "schema",
	Usage: "manage the attribute types",
	Subcommands: []*cli.Command{
		{
			Name:      "import",
			Usage:     "import an attribute type from a JSON or YAML schema file",
			ArgsUsage: "<file>",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "url",
					Usage:    "url identifying the attribute type",
					Required: true,
				},
			},
			Action: importSchemaAction,
		},
		{
			Name:      "get",
			Usage:     "print the schema of an attribute type",
			ArgsUsage: "<url>",
			Action:    getSchemaAction,
		},
	},
}

func importSchemaAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	filename := ctx.Args().First()

	buf, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	content, err := decodeSchema(filename, buf)
	if err != nil {
		return fmt.Errorf("invalid schema file: %w", err)
	}

	attributeType := domain.AttributeType{
		ID:      uuid.New().String(),
		URL:     ctx.String("url"),
		Content: content,
	}
	if err := attributeType.Validate(); err != nil {
		return err
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.repo.AttributeRepository().AddAttributeType(
		ctx.Context, attributeType,
	); err != nil {
		return err
	}
	return printJSON(ctx, map[string]string{
		"id":  attributeType.ID,
		"url": attributeType.URL,
	})
}

func getSchemaAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	attributeType, err := s.repo.AttributeRepository().GetAttributeType(
		ctx.Context, ctx.Args().First(),
	)
	if err != nil {
		return err
	}
	schema, err := attributeType.Schema()
	if err != nil {
		return err
	}
	return printJSON(ctx, schema)
}

// decodeSchema returns the JSON form of a schema file, YAML files are
// recognized by extension.
func decodeSchema(filename string, buf []byte) (json.RawMessage, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".yaml" && ext != ".yml" {
		if !json.Valid(buf) {
			return nil, fmt.Errorf("malformed JSON")
		}
		return buf, nil
	}

	var schema map[string]interface{}
	if err := yaml.Unmarshal(buf, &schema); err != nil {
		return nil, err
	}
	return json.Marshal(schema)
}
