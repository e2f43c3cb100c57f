package config

// DockerConfig selects the docker CLI to drive.
type DockerConfig struct {
	Binary string `yaml:"binary" toml:"binary"`
}

// BuildConfig holds settings for the `docker build` invocation.
type BuildConfig struct {
	// ArgPrefix selects environment variables forwarded as build args:
	// PREFIX_NAME=value becomes --build-arg NAME=value.
	ArgPrefix string `yaml:"arg_prefix" toml:"arg_prefix"`
}

// CacheConfig holds cache warm-up settings.
type CacheConfig struct {
	// Variables names the environment variables holding candidate cache
	// repositories. At most MaxCacheVariables are consulted.
	Variables []string `yaml:"variables" toml:"variables"`

	// Concurrency bounds parallel pulls. 1 pulls one image at a time.
	Concurrency int `yaml:"concurrency" toml:"concurrency"`
}

// LabelsConfig controls OCI labels added to the image.
type LabelsConfig struct {
	// Revision adds org.opencontainers.image.revision from the git HEAD of
	// the build context.
	Revision bool `yaml:"revision" toml:"revision"`
}

// MaxCacheVariables caps the number of cache source variables.
const MaxCacheVariables = 4

// DefaultCacheVariables are the registry variables read when none are configured.
var DefaultCacheVariables = []string{
	"CI_REGISTRY_IMAGE",
	"CI_APPLICATION_REPOSITORY",
	"DOCKER_CACHE_REPOSITORY",
	"DOCKER_REPOSITORY",
}

// DefaultDockerConfig returns the docker CLI defaults.
func DefaultDockerConfig() DockerConfig {
	return DockerConfig{Binary: "docker"}
}

// DefaultBuildConfig returns the build defaults.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{ArgPrefix: "DOCKER_BUILD_ARG_"}
}

// DefaultCacheConfig returns the warm-up defaults.
func DefaultCacheConfig() CacheConfig {
	vars := make([]string, len(DefaultCacheVariables))
	copy(vars, DefaultCacheVariables)
	return CacheConfig{
		Variables:   vars,
		Concurrency: 1,
	}
}
