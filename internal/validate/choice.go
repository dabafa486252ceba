package validate

// Button tokens of the city and country keyboards.
const (
	CityPrefix    = "city_"
	CountryPrefix = "country_"
)

// PrimaryCountry is the country whose citizens must provide the registration page.
const PrimaryCountry = "ru"

// OtherCountry is the sentinel code for citizenships outside the enumerated set.
const OtherCountry = "other"

// Option is one enumerated button choice.
type Option struct {
	Token string
	Code  string
	Label string
}

var Cities = []Option{
	{Token: "city_msk", Code: "msk", Label: "Москва"},
	{Token: "city_spb", Code: "spb", Label: "Санкт-Петербург"},
}

var Countries = []Option{
	{Token: "country_ru", Code: "ru", Label: "Российская Федерация"},
	{Token: "country_kz", Code: "kz", Label: "Казахстан"},
	{Token: "country_kg", Code: "kg", Label: "Кыргызстан"},
	{Token: "country_uz", Code: "uz", Label: "Узбекистан"},
	{Token: "country_tj", Code: "tj", Label: "Таджикистан"},
	{Token: "country_other", Code: OtherCountry, Label: "Другое"},
}

var patentCountries = map[string]bool{"uz": true, "tj": true}

// City resolves a city button token.
func City(token string) (Option, error) {
	return lookup(Cities, token, ErrUnknownCity)
}

// Country resolves a country button token.
func Country(token string) (Option, error) {
	return lookup(Countries, token, ErrUnknownCountry)
}

// CountryFlags derives the patent and registration-page flags for a country
// code. Codes outside the enumerated set get the strictest document set.
func CountryFlags(code string) (patentRequired, registrationPageOptional bool) {
	known := false
	for _, c := range Countries {
		if c.Code == code && code != OtherCountry {
			known = true
			break
		}
	}
	if !known {
		return true, true
	}
	return patentCountries[code], code != PrimaryCountry
}

func lookup(options []Option, token string, notFound error) (Option, error) {
	for _, o := range options {
		if o.Token == token {
			return o, nil
		}
	}
	return Option{}, notFound
}
