package tokens

import "os"

// EnvVar is the environment variable holding the path to a token file, the
// same convention rakaly's own tools use so a single export works across
// every command in this module.
const EnvVar = "HOI4_TOKENS"

// FromEnv loads the resolver named by the HOI4_TOKENS environment variable.
// If the variable is unset, it returns Empty() rather than an error, since
// plaintext saves and --unknown stringify runs need no token file at
// all.
func FromEnv() (Resolver, []string, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Empty(), nil, nil
	}

	resolver, duplicates, err := LoadMapResolverFile(path)
	if err != nil {
		return nil, nil, err
	}

	return resolver, duplicates, nil
}
