package models

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Filter is implemented by every list parameter struct. Values returns
// the canonical query string form used both on the wire and in cache keys.
type Filter interface {
	Values() url.Values
}

// NoFilter is used by endpoints without list parameters.
type NoFilter struct{}

func (NoFilter) Values() url.Values { return url.Values{} }

// Page holds the shared pagination and search parameters.
type Page struct {
	Search  string `json:"search"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
}

func (p Page) apply(v url.Values) {
	setString(v, "search", p.Search)
	setInt(v, "page", p.Page)
	setInt(v, "per_page", p.PerPage)
}

// DecodeFilter fills a filter struct from loosely typed key/value pairs
// such as command line flags. Keys are matched against json tag names.
func DecodeFilter(raw map[string]string, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Squash:           true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.DateOnly),
		Result:           out,
	})
	if err != nil {
		return err
	}
	input := make(map[string]interface{}, len(raw))
	for k, v := range raw {
		input[k] = v
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}
	return nil
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func setInt(v url.Values, key string, value int) {
	if value != 0 {
		v.Set(key, strconv.Itoa(value))
	}
}

func setBool(v url.Values, key string, value *bool) {
	if value != nil {
		v.Set(key, strconv.FormatBool(*value))
	}
}

func setDate(v url.Values, key string, value *time.Time) {
	if value != nil && !value.IsZero() {
		v.Set(key, value.Format(time.DateOnly))
	}
}
