package db_test

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/idwallet/lwsd/internal/core/domain"
)

const (
	emailTypeURL    = "http://platform.idwallet.io/schema/attribute/email.json"
	passportTypeURL = "http://platform.idwallet.io/schema/attribute/passport.json"
)

var (
	emailType = domain.AttributeType{
		URL:     emailTypeURL,
		Content: json.RawMessage(`{"type":"string","format":"email"}`),
	}
	passportType = domain.AttributeType{
		URL: passportTypeURL,
		Content: json.RawMessage(`{
			"type":"object",
			"properties":{
				"number":{"type":"string"},
				"front":{"type":"object","format":"file"}
			}
		}`),
	}
)

func makeRandomLocalWallet() domain.Wallet {
	return domain.Wallet{
		ID:               randomId(),
		Address:          "0x" + randomHex(20),
		Name:             "wallet",
		Profile:          domain.ProfileLocal,
		KeystoreFilePath: "UTC--keystore",
	}
}

func makeLoginAttempt(
	walletID, url string, success bool, createdAt int64,
) domain.LoginAttempt {
	attempt := domain.LoginAttempt{
		ID:          randomId(),
		WalletID:    walletID,
		WebsiteName: "RP",
		WebsiteURL:  url,
		Success:     success,
		CreatedAt:   createdAt,
	}
	if !success {
		attempt.ErrorCode = domain.DefaultErrorCode
		attempt.ErrorMessage = domain.DefaultErrorMessage
	}
	return attempt
}

func makeEmailAttribute(walletID string) domain.Attribute {
	return domain.Attribute{
		ID:       randomId(),
		WalletID: walletID,
		TypeURL:  emailTypeURL,
		Name:     "Email",
		Data:     json.RawMessage(`"user@example.com"`),
	}
}

func makePassportAttribute(walletID string) domain.Attribute {
	id := randomId()
	return domain.Attribute{
		ID:       id,
		WalletID: walletID,
		TypeURL:  passportTypeURL,
		Name:     "Passport",
		Data:     json.RawMessage(`{"number":"AA123","front":"$document-1"}`),
		Documents: []domain.Document{
			{
				ID:          "1",
				AttributeID: id,
				Name:        "front.png",
				MimeType:    "image/png",
				Size:        4,
				Buffer:      randomBytes(4),
				Fields: map[string]interface{}{
					"name":         "front.png",
					"mimeType":     "image/png",
					"lastModified": float64(1700000000),
				},
			},
		},
	}
}

func now() int64 {
	return time.Now().Unix()
}

func randomHex(len int) string {
	return hex.EncodeToString(randomBytes(len))
}

func randomId() string {
	return uuid.New().String()
}

func randomBytes(len int) []byte {
	b := make([]byte, len)
	//nolint
	rand.Read(b)
	return b
}
