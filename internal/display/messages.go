// Package display renders the user-facing strings for the wallet gate.
// Messages may carry inline HTML (the host renders them in status banners),
// matching the strikethrough markup editors expect for discounted prices.
package display

import (
	"fmt"
	"strings"

	"github.com/opencampus/paygate/internal/config"
)

// FormatAmount renders a minor-unit amount with the configured currency
// suffix, e.g. 10050 -> "100.50 EGP".
func FormatAmount(cfg config.DisplayConfig, minor int64) string {
	negative := minor < 0
	if negative {
		minor = -minor
	}

	div := int64(1)
	for i := 0; i < cfg.MinorUnits; i++ {
		div *= 10
	}

	var value string
	if cfg.MinorUnits == 0 {
		value = fmt.Sprintf("%d", minor)
	} else {
		value = fmt.Sprintf("%d.%0*d", minor/div, cfg.MinorUnits, minor%div)
	}
	if negative {
		value = "-" + value
	}

	if currency := strings.TrimSpace(cfg.Currency); currency != "" {
		return value + " " + currency
	}
	return value
}

// PriceTag renders the cost, striking through the original price when a
// discount applies.
func PriceTag(cfg config.DisplayConfig, baseCost, effectiveCost int64) string {
	if effectiveCost == baseCost {
		return FormatAmount(cfg, baseCost)
	}
	return fmt.Sprintf("<del>%s</del> %s", FormatAmount(cfg, baseCost), FormatAmount(cfg, effectiveCost))
}

func InvalidCost() string {
	return "ERROR: Invalid cost, please enter a valid cost."
}

func InsufficientBalance(cost, balance string) string {
	return fmt.Sprintf("Insufficient balance to access, %s required while your balance is %s", cost, balance)
}

func AlreadyPaid(cost string) string {
	return fmt.Sprintf("Already paid %s", cost)
}

func PayPrompt(cost, balance string) string {
	return fmt.Sprintf("You need to pay %s for access. Your current balance is %s", cost, balance)
}

func NegatedPrompt(cost, balance string) string {
	return fmt.Sprintf("A cost of %s already paid. Your current balance is %s", cost, balance)
}

func DebitReason(itemName string) string {
	return fmt.Sprintf("Due to access to: %s", itemName)
}

func PaymentSuccess() string {
	return "Payment successful"
}

func PaymentNotEnough() string {
	return "Payment isn't enough."
}

func NoItemProvided() string {
	return "No course module or section provided"
}
