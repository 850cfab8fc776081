package dbmodels

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
)

// JSONRaw хранит блоб как есть, разбор происходит на границе чтения
type JSONRaw json.RawMessage

func (j JSONRaw) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "null", nil
	}
	return string(j), nil
}

func (j *JSONRaw) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append(JSONRaw{}, v...)
	case string:
		*j = JSONRaw(v)
	default:
		return errors.Errorf("неподдерживаемый тип jsonb колонки: %T", value)
	}
	return nil
}

func (j JSONRaw) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

func (j *JSONRaw) UnmarshalJSON(data []byte) error {
	*j = append((*j)[0:0], data...)
	return nil
}

type JSONMap map[string]any

func (j JSONMap) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *JSONMap) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("неподдерживаемый тип jsonb колонки: %T", value)
	}
	return json.Unmarshal(data, j)
}

type StringList []string

func (j StringList) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *StringList) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("неподдерживаемый тип jsonb колонки: %T", value)
	}
	return json.Unmarshal(data, j)
}

// Contains - проверка наличия без учета порядка
func (j StringList) Contains(id string) bool {
	for _, v := range j {
		if v == id {
			return true
		}
	}
	return false
}

// Union добавляет отсутствующие элементы, существующие не дублируются
func (j StringList) Union(ids []string) StringList {
	result := append(StringList{}, j...)
	for _, id := range ids {
		if !result.Contains(id) {
			result = append(result, id)
		}
	}
	return result
}
