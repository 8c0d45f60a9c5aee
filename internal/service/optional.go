package service

import "encoding/json"

// Optional поле частичного обновления: Set=false если ключа не было, Value=nil для явного null.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some заданное значение.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null явный null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// orNil значение для map-обновления gorm: nil пишется как NULL.
func (o Optional[T]) orNil() any {
	if o.Value == nil {
		return nil
	}
	return *o.Value
}
