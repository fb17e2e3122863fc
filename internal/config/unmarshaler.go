package config

import (
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/smykla-skalski/cursor-updater/pkg/config"
)

// CustomDecoderConfig returns a mapstructure decoder config with custom type hooks
// for handling Duration, SourceType and PrivilegeMode values.
func CustomDecoderConfig() *mapstructure.DecoderConfig {
	return &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToDurationHookFunc(),
			stringToSourceTypeHookFunc(),
			stringToPrivilegeModeHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
		),
		WeaklyTypedInput: true,
		Result:           nil, // Set by caller
	}
}

// stringToDurationHookFunc returns a decode hook for converting strings to config.Duration.
//
//nolint:ireturn // required by mapstructure.DecodeHookFunc interface
func stringToDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(
		_ reflect.Type,
		t reflect.Type,
		data any,
	) (any, error) {
		if t != reflect.TypeFor[config.Duration]() {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			var d config.Duration
			if err := d.UnmarshalText([]byte(v)); err != nil {
				return nil, err
			}

			return d, nil

		case int64:
			return config.Duration(time.Duration(v)), nil

		case float64:
			return config.Duration(time.Duration(v)), nil

		default:
			return data, nil
		}
	}
}

//nolint:ireturn // required by mapstructure.DecodeHookFunc interface
func stringToSourceTypeHookFunc() mapstructure.DecodeHookFunc {
	return func(_ reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeFor[config.SourceType]() {
			return data, nil
		}

		if v, ok := data.(string); ok {
			return config.ParseSourceType(v)
		}

		return data, nil
	}
}

//nolint:ireturn // required by mapstructure.DecodeHookFunc interface
func stringToPrivilegeModeHookFunc() mapstructure.DecodeHookFunc {
	return func(_ reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeFor[config.PrivilegeMode]() {
			return data, nil
		}

		if v, ok := data.(string); ok {
			return config.ParsePrivilegeMode(v)
		}

		return data, nil
	}
}
