package services

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	zohocrm "github.com/natserract/zohosync/pkg/zoho/crm"
	"go.uber.org/zap"
)

// Mapper turns CRM accounts into company attributes.
type Mapper struct {
	logger *zap.Logger
}

// NewMapper creates a Mapper. Values that cannot be converted are logged as
// warnings and left out of the result.
func NewMapper(logger *zap.Logger) *Mapper {
	return &Mapper{logger: logger}
}

// MapAccount applies every field mapping to a. Fields that are absent or map
// to an empty value are omitted. The fixed defaults are always set.
func (m *Mapper) MapAccount(a *zohocrm.Account) CompanyAttributes {
	attrs := CompanyAttributes{
		Type:      CompanyType,
		Published: true,
		OwnerID:   DefaultOwnerID,
	}
	for _, fm := range fieldMappings {
		fm.apply(m, a, &attrs)
	}
	return attrs
}

func (m *Mapper) text(_ string, raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	return v, v != ""
}

func (m *Mapper) longText(_ string, raw string) (LongText, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return LongText{}, false
	}
	return LongText{Value: v, Format: BasicHTML}, true
}

// integer accepts decimal input and truncates it toward zero.
func (m *Mapper) integer(field, raw string) (int64, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int64(f), true
	}
	m.logger.Warn("Invalid integer for field", zap.String("field", field), zap.String("value", v))
	return 0, false
}

func (m *Mapper) decimal(field, raw string) (float64, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		m.logger.Warn("Invalid decimal for field", zap.String("field", field), zap.String("value", v))
		return 0, false
	}
	return f, true
}

func (m *Mapper) phone(_ string, raw string) (string, bool) {
	v := strings.TrimSpace(raw)
	return v, v != ""
}

// url prefixes http:// to values without a scheme, then requires an absolute
// http(s) URL with a host.
func (m *Mapper) url(field, raw string) (Link, bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Link{}, false
	}
	if !hasHTTPScheme(v) {
		v = "http://" + v
	}
	if !validURL(v) {
		m.logger.Warn("Invalid URL for field", zap.String("field", field), zap.String("value", raw))
		return Link{}, false
	}
	return Link{URI: v}, true
}

func hasHTTPScheme(v string) bool {
	for _, prefix := range []string{"http://", "https://"} {
		if len(v) >= len(prefix) && strings.EqualFold(v[:len(prefix)], prefix) {
			return true
		}
	}
	return false
}

func validURL(v string) bool {
	if strings.ContainsAny(v, " \t\r\n") {
		return false
	}
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	// A trailing colon means a second scheme was read as host:port.
	if strings.HasSuffix(u.Host, ":") {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Hostname() != ""
}
