package phish

import "strings"

const defaultName = "Valued Customer"

// Personalize substitutes the {name} and {email} placeholders in the lure
// template. Other braces in the HTML pass through untouched.
func Personalize(template string, r Recipient) string {
	name := r.Name
	if name == "" {
		name = defaultName
	}
	out := strings.ReplaceAll(template, "{name}", name)
	out = strings.ReplaceAll(out, "{email}", r.Email)
	return out
}
