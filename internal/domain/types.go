package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList 以 JSON 文本落库，三种驱动通用
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(value any) error {
	return scanJSON(value, s)
}

type SocialLink struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	HasValue bool   `json:"hasValue"`
}

type SocialLinks []SocialLink

func (s SocialLinks) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]SocialLink(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *SocialLinks) Scan(value any) error {
	return scanJSON(value, s)
}

func scanJSON(value any, dst any) error {
	var b []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into json column", value)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, dst)
}
