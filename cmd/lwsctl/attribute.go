package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/idwallet/lwsd/internal/core/domain"
	"github.com/idwallet/lwsd/pkg/idattribute"
)

var attributeCmd = cli.Command{
	Name:  "attribute",
	Usage: "manage the identity attributes of a wallet",
	Subcommands: []*cli.Command{
		{
			Name:  "add",
			Usage: "add an attribute to a wallet",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "address",
					Usage:    "address of the owning wallet",
					Required: true,
				},
				&cli.StringFlag{
					Name:     "type",
					Usage:    "url of the attribute type",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "name",
					Usage: "label of the attribute",
				},
				&cli.StringFlag{
					Name:  "value",
					Usage: "JSON value of the attribute",
				},
				&cli.StringFlag{
					Name:  "value-file",
					Usage: "file containing the JSON value of the attribute",
				},
			},
			Action: addAttributeAction,
		},
		{
			Name:  "list",
			Usage: "list the attributes of a wallet",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "address",
					Usage:    "address of the owning wallet",
					Required: true,
				},
			},
			Action: listAttributesAction,
		},
		{
			Name:      "delete",
			Usage:     "delete an attribute and its documents",
			ArgsUsage: "<id>",
			Action:    deleteAttributeAction,
		},
	},
}

type documentInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType"`
	Size     int64  `json:"size"`
}

type attributeInfo struct {
	ID        string          `json:"id"`
	TypeURL   string          `json:"typeUrl"`
	Name      string          `json:"name,omitempty"`
	Data      json.RawMessage `json:"data"`
	Documents []documentInfo  `json:"documents"`
}

func newAttributeInfo(a domain.Attribute) attributeInfo {
	docs := make([]documentInfo, 0, len(a.Documents))
	for _, d := range a.Documents {
		docs = append(docs, documentInfo{d.ID, d.Name, d.MimeType, d.Size})
	}
	return attributeInfo{
		ID:        a.ID,
		TypeURL:   a.TypeURL,
		Name:      a.Name,
		Data:      a.Data,
		Documents: docs,
	}
}

func addAttributeAction(ctx *cli.Context) error {
	rawValue := []byte(ctx.String("value"))
	if filename := ctx.String("value-file"); len(filename) > 0 {
		buf, err := os.ReadFile(filename)
		if err != nil {
			return err
		}
		rawValue = buf
	}
	if len(rawValue) <= 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	var value interface{}
	if err := json.Unmarshal(rawValue, &value); err != nil {
		return fmt.Errorf("malformed attribute value: %w", err)
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	w, err := s.repo.WalletRepository().FindByAddress(
		ctx.Context, domain.NormalizeAddress(ctx.String("address")),
	)
	if err != nil {
		return err
	}
	attributeType, err := s.repo.AttributeRepository().GetAttributeType(
		ctx.Context, ctx.String("type"),
	)
	if err != nil {
		return err
	}
	schema, err := attributeType.Schema()
	if err != nil {
		return err
	}

	normalized, err := idattribute.Normalize(schema, value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(normalized.Value)
	if err != nil {
		return err
	}

	attribute := domain.Attribute{
		ID:       uuid.New().String(),
		WalletID: w.ID,
		TypeURL:  attributeType.URL,
		Name:     ctx.String("name"),
		Data:     data,
	}
	for _, d := range normalized.Documents {
		doc, err := domain.DocumentFromCodec(attribute.ID, d)
		if err != nil {
			return fmt.Errorf("malformed document %s: %w", d.ID, err)
		}
		attribute.Documents = append(attribute.Documents, *doc)
	}

	if err := s.repo.AttributeRepository().AddAttribute(
		ctx.Context, attribute,
	); err != nil {
		return err
	}
	return printJSON(ctx, newAttributeInfo(attribute))
}

func listAttributesAction(ctx *cli.Context) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	w, err := s.repo.WalletRepository().FindByAddress(
		ctx.Context, domain.NormalizeAddress(ctx.String("address")),
	)
	if err != nil {
		return err
	}
	attributes, err := s.repo.AttributeRepository().FindByWalletID(
		ctx.Context, w.ID,
	)
	if err != nil {
		return err
	}

	list := make([]attributeInfo, 0, len(attributes))
	for _, a := range attributes {
		list = append(list, newAttributeInfo(a))
	}
	return printJSON(ctx, list)
}

func deleteAttributeAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	return s.repo.AttributeRepository().DeleteAttribute(
		ctx.Context, ctx.Args().First(),
	)
}
