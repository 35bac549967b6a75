// Package tensor provides the core tensor types and operations for the
// smallnet model library.
package tensor

// DType is a constraint for supported tensor data types.
// It uses Go generics to ensure compile-time type safety.
type DType interface {
	~float32 | ~float64 | ~int32 | ~int64 | ~uint8 | ~bool
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Int32
	Int64
	Uint8
	Bool
)

var dtypeSizes = [...]int{
	Float32: 4,
	Float64: 8,
	Int32:   4,
	Int64:   8,
	Uint8:   1,
	Bool:    1,
}

var dtypeNames = [...]string{
	Float32: "float32",
	Float64: "float64",
	Int32:   "int32",
	Int64:   "int64",
	Uint8:   "uint8",
	Bool:    "bool",
}

// Size returns the byte size of one element of the data type.
func (dt DataType) Size() int {
	if dt < 0 || int(dt) >= len(dtypeSizes) {
		panic("unknown data type")
	}
	return dtypeSizes[dt]
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	if dt < 0 || int(dt) >= len(dtypeNames) {
		return "unknown"
	}
	return dtypeNames[dt]
}

// inferDataType maps a generic type T to its runtime DataType.
func inferDataType[T DType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case bool:
		return Bool
	default:
		panic("unsupported type")
	}
}
