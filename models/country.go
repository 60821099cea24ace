package models

// CountryOption is an entry of the country picker.
type CountryOption struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Flag     string `json:"flag"`
	DialCode string `json:"dialCode,omitempty"`
}
