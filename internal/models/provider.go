package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Provider names as stored in the directory. Zambian mobile money
// operators supported by the platform.
const (
	ProviderAirtel = "airtel"
	ProviderZamtel = "zamtel"
	ProviderMTN    = "mtn"
)

// Provider is the reference record for a mobile money operator. Exactly
// one of MerchantCode, BusinessNumber or PayeeCode is set depending on
// how the operator addresses pay-bill targets.
type Provider struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name           string             `bson:"name" json:"name"`
	DisplayName    string             `bson:"displayName" json:"display_name"`
	UssdCode       string             `bson:"ussdCode" json:"ussd_code"`
	MerchantCode   string             `bson:"merchantCode,omitempty" json:"merchant_code,omitempty"`
	BusinessNumber string             `bson:"businessNumber,omitempty" json:"business_number,omitempty"`
	PayeeCode      string             `bson:"payeeCode,omitempty" json:"payee_code,omitempty"`
	PhonePrefixes  []string           `bson:"phonePrefixes" json:"phone_prefixes"`
	Instructions   string             `bson:"instructions" json:"instructions"`
	IsActive       bool               `bson:"isActive" json:"is_active"`
	CreatedAt      time.Time          `bson:"createdAt" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updated_at"`
}

// ClaimsPrefix reports whether the provider has declared the given
// 3-digit phone prefix. Prefix sets overlap between operators, so a
// positive answer does not imply exclusivity.
func (p *Provider) ClaimsPrefix(prefix string) bool {
	for _, candidate := range p.PhonePrefixes {
		if candidate == prefix {
			return true
		}
	}
	return false
}
