package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// configFileEnv names the optional YAML file consulted before environment
// overrides are applied.
const configFileEnv = "CONFIG_FILE"

// loadInto fills cfg from the YAML file named by CONFIG_FILE, if any, then
// walks the struct applying environment overrides. Override keys come from
// `env` struct tags when present; otherwise the uppercased field path joined
// with underscores is used, so Storage.Driver answers to STORAGE_DRIVER.
func loadInto(cfg *Config) error {
	if path := os.Getenv(configFileEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return applyEnv(reflect.ValueOf(cfg).Elem(), "")
}

func applyEnv(v reflect.Value, path string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}

		key := t.Field(i).Tag.Get("env")
		switch key {
		case "-":
			continue
		case "":
			key = envKey(path, t.Field(i).Name)
		}

		if field.Kind() == reflect.Struct {
			if err := applyEnv(field, key); err != nil {
				return err
			}
			continue
		}

		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		if err := setField(field, raw); err != nil {
			return fmt.Errorf("config: bad value for %s: %w", key, err)
		}
	}
	return nil
}

func envKey(path, name string) string {
	name = strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	if path == "" {
		return name
	}
	return path + "_" + name
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v, err := strconv.ParseInt(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v, err := strconv.ParseUint(raw, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetUint(v)
	case reflect.Float32, reflect.Float64:
		v, err := strconv.ParseFloat(raw, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetFloat(v)
	default:
		return fmt.Errorf("cannot set %s from environment", field.Type())
	}
	return nil
}
