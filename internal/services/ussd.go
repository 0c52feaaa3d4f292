package services

import (
	"fmt"
	"strings"

	"github.com/brightkatongo/learn-hub/internal/models"
)

// BuildUSSDInstructions assembles the provider-specific dial sequence a
// payer follows to complete the transaction. Each Zambian operator
// addresses pay-bill targets differently: Airtel by merchant code,
// Zamtel by business number, MTN by payee code.
func BuildUSSDInstructions(provider *models.Provider, tx *models.Transaction) *USSDInstructions {
	var steps []string
	switch provider.Name {
	case models.ProviderAirtel:
		steps = []string{
			fmt.Sprintf("Dial %s on your Airtel phone", provider.UssdCode),
			"Select option 1: Send Money",
			"Select option 2: Pay Bill",
			fmt.Sprintf("Enter Merchant Code: %s", provider.MerchantCode),
			fmt.Sprintf("Enter Amount: %.2f", tx.Amount),
			fmt.Sprintf("Enter Reference: %s", tx.ReferenceCode),
			"Enter your PIN to confirm",
			"Wait for confirmation SMS",
		}
	case models.ProviderZamtel:
		steps = []string{
			fmt.Sprintf("Dial %s on your Zamtel phone", provider.UssdCode),
			"Select option 2: Pay Bill",
			fmt.Sprintf("Enter Business Number: %s", provider.BusinessNumber),
			fmt.Sprintf("Enter Amount: %.2f", tx.Amount),
			fmt.Sprintf("Enter Reference: %s", tx.ReferenceCode),
			"Enter your PIN to confirm",
			"Wait for confirmation SMS",
		}
	case models.ProviderMTN:
		steps = []string{
			fmt.Sprintf("Dial %s on your MTN phone", provider.UssdCode),
			"Select option 1: Send Money",
			"Select option 2: Pay Bill",
			fmt.Sprintf("Enter Payee Code: %s", provider.PayeeCode),
			fmt.Sprintf("Enter Amount: %.2f", tx.Amount),
			fmt.Sprintf("Enter Reference: %s", tx.ReferenceCode),
			"Enter your PIN to confirm",
			"Wait for confirmation SMS",
		}
	default:
		// Unknown operator: fall back to whichever pay-bill code is set.
		payBillCode := provider.MerchantCode
		if payBillCode == "" {
			payBillCode = provider.BusinessNumber
		}
		if payBillCode == "" {
			payBillCode = provider.PayeeCode
		}
		steps = []string{
			fmt.Sprintf("Dial %s on your %s phone", provider.UssdCode, provider.DisplayName),
			"Select the Pay Bill option",
			fmt.Sprintf("Enter Pay Bill Code: %s", payBillCode),
			fmt.Sprintf("Enter Amount: %.2f", tx.Amount),
			fmt.Sprintf("Enter Reference: %s", tx.ReferenceCode),
			"Enter your PIN to confirm",
			"Wait for confirmation SMS",
		}
	}

	return &USSDInstructions{
		Steps:         steps,
		UssdCode:      provider.UssdCode,
		QRCodeData:    ussdTelLink(provider.UssdCode),
		EstimatedTime: "2-3 minutes",
	}
}

// ussdTelLink renders the USSD code as a dialable tel: URI for QR
// rendering on the client. '#' must be percent-encoded or dialers drop
// the rest of the code.
func ussdTelLink(ussdCode string) string {
	return "tel:" + strings.ReplaceAll(ussdCode, "#", "%23")
}
