// Package config loads the hub configuration from an HCL file.
//
// Attribute values may reference environment variables through the env
// object, for example `url = env.JUDGE_URL`. A .env file is loaded into the
// process environment beforehand when one is given, without overriding
// variables that are already set.
package config
