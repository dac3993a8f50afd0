package schema

import "github.com/go-viper/mapstructure/v2"

// Decode copies validated values into a typed struct using its json tags.
// Pointer fields stay nil when the value was absent, which keeps partial shapes typed.
func Decode(values map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}
