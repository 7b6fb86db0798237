package main

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/idwallet/lwsd/internal/core/domain"
)

var attemptsCmd = cli.Command{
	Name:  "attempts",
	Usage: "inspect the relying party login attempts of a wallet",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "list login and signup attempts, oldest first",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "address",
					Usage:    "address of the wallet",
					Required: true,
				},
			},
			Action: listAttemptsAction,
		},
	},
}

type attemptInfo struct {
	ID           string `json:"id"`
	WebsiteName  string `json:"websiteName,omitempty"`
	WebsiteURL   string `json:"websiteUrl"`
	Signup       bool   `json:"signup"`
	Success      bool   `json:"success"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	CreatedAt    string `json:"createdAt"`
}

func listAttemptsAction(ctx *cli.Context) error {
	s, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	repo := s.repo.WalletRepository()
	w, err := repo.FindByAddress(
		ctx.Context, domain.NormalizeAddress(ctx.String("address")),
	)
	if err != nil {
		return err
	}
	attempts, err := repo.ListLoginAttempts(ctx.Context, w.ID)
	if err != nil {
		return err
	}

	list := make([]attemptInfo, 0, len(attempts))
	for _, a := range attempts {
		list = append(list, attemptInfo{
			ID:           a.ID,
			WebsiteName:  a.WebsiteName,
			WebsiteURL:   a.WebsiteURL,
			Signup:       a.Signup,
			Success:      a.Success,
			ErrorCode:    a.ErrorCode,
			ErrorMessage: a.ErrorMessage,
			CreatedAt:    time.Unix(a.CreatedAt, 0).UTC().Format(time.RFC3339),
		})
	}
	return printJSON(ctx, list)
}
