// Package validation validates configuration structs through
// go-playground/validator struct tags.
//
//	type Config struct {
//	    Workers int `mapstructure:"workers" validate:"gte=1,lte=4096"`
//	}
//	err := validation.Struct(cfg)
//
// Failures are reported as a single errors.AppError with code
// INVALID_CONFIG whose "fields" detail lists every failed field.
package validation
