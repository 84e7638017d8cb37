package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultBuildPath is where build directories are searched, relative to the project
	DefaultBuildPath = "build"
	// DefaultCTestPath is the ctest executable looked up on PATH
	DefaultCTestPath = "ctest"
	// DefaultCMakePath is the cmake executable looked up on PATH
	DefaultCMakePath = "cmake"
	// DefaultBuildConfig is the configuration passed to -C / --config
	DefaultBuildConfig = "Debug"
	// DefaultBuildTarget is built before tests run
	DefaultBuildTarget = "all"
	// DefaultJobs is the default ctest job count
	DefaultJobs = 4
	// DefaultMinStructuredVersion is the first ctest release with --show-only=json-v1
	DefaultMinStructuredVersion = "3.14.0"
	// DefaultLogLevel is the default log level
	DefaultLogLevel = "info"
	// DefaultConfigName is the config file looked up in the project root (without extension)
	DefaultConfigName = ".ctp"
	// DefaultEnvFile is loaded into the environment of every tool invocation
	DefaultEnvFile = ".env"
)

// DefaultCTestArgs are passed to every ctest run
var DefaultCTestArgs = []string{"-T", "test", "--output-on-failure"}

// DefaultDebuggerCommand prefixes the test command line in debug runs
var DefaultDebuggerCommand = []string{"gdb", "-batch", "-ex", "run", "-ex", "bt", "--args"}

// DefaultPathsToIgnore are the default directories to ignore when scanning for build directories
var DefaultPathsToIgnore = []string{
	"CMakeFiles",
	"Testing",
	"_deps",
	"node_modules",
	"vendor",
}
