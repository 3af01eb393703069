package config

import (
	"os"
	"strconv"
)

// Env holds the process-wide settings read straight from the environment
// rather than from XML: storage backend credentials and the PROJ search
// path. A flat struct populated by direct os.Getenv calls, with no
// env/flag parsing framework.
type Env struct {
	S3URL       string
	S3Key       string
	S3SecretKey string
	S3UseSSL    bool

	SwiftAuthURL string
	SwiftUser    string
	SwiftPasswd  string

	CephClusterName string
	CephUserName    string
	CephConfFile    string

	RedisHost   string
	RedisPort   string
	RedisPasswd string

	ProjLib string
}

// LoadEnv reads the ROK4_*/PROJ_LIB environment variables. rok4d uses the
// Redis and PROJ_LIB values; LoadPyramid builds storage backends from the
// pyramid XML alone and does not fall back to the storage values here.
func LoadEnv() Env {
	useSSL, _ := strconv.ParseBool(os.Getenv("ROK4_S3_USESSL"))
	return Env{
		S3URL:       os.Getenv("ROK4_S3_URL"),
		S3Key:       os.Getenv("ROK4_S3_KEY"),
		S3SecretKey: os.Getenv("ROK4_S3_SECRETKEY"),
		S3UseSSL:    useSSL,

		SwiftAuthURL: os.Getenv("ROK4_SWIFT_AUTHURL"),
		SwiftUser:    os.Getenv("ROK4_SWIFT_USER"),
		SwiftPasswd:  os.Getenv("ROK4_SWIFT_PASSWD"),

		CephClusterName: os.Getenv("ROK4_CEPH_CLUSTERNAME"),
		CephUserName:    os.Getenv("ROK4_CEPH_USERNAME"),
		CephConfFile:    os.Getenv("ROK4_CEPH_CONFFILE"),

		RedisHost:   os.Getenv("ROK4_REDIS_HOST"),
		RedisPort:   os.Getenv("ROK4_REDIS_PORT"),
		RedisPasswd: os.Getenv("ROK4_REDIS_PASSWD"),

		ProjLib: os.Getenv("PROJ_LIB"),
	}
}

// RedisAddr returns the host:port form go-redis expects, defaulting the
// port to Redis's standard 6379 when ROK4_REDIS_PORT is unset.
func (e Env) RedisAddr() string {
	if e.RedisHost == "" {
		return ""
	}
	port := e.RedisPort
	if port == "" {
		port = "6379"
	}
	return e.RedisHost + ":" + port
}
