package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// parseFlags parses command-line configuration flags from args.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-c/-config json file path with configs
//	-jwt-secret token signing secret
//	-jwt-algorithm token signing algorithm (HS256, HS384, HS512)
//	-access-token-minutes access token lifetime in minutes
//	-refresh-token-days refresh token lifetime in days
//	-session-days session lifetime in days
//	-max-sessions maximum active sessions per user
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-redis redis address for rate limiting
//	-amqp RabbitMQ URL for session events
//	-hash-workers number of password hashing workers
func parseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

	var serverAddress NetAddress
	var databaseDSN, jsonConfigPath string
	var jwtSecret, jwtAlgorithm string
	var accessMinutes, refreshDays, sessionDays, maxSessions int
	var requestTimeout time.Duration
	var redisAddress, amqpURL string
	var hashWorkers int

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&jwtSecret, "jwt-secret", "", "Token signing secret")
	fs.StringVar(&jwtAlgorithm, "jwt-algorithm", "", "Token signing algorithm")
	fs.IntVar(&accessMinutes, "access-token-minutes", 0, "Access token lifetime in minutes")
	fs.IntVar(&refreshDays, "refresh-token-days", 0, "Refresh token lifetime in days")
	fs.IntVar(&sessionDays, "session-days", 0, "Session lifetime in days")
	fs.IntVar(&maxSessions, "max-sessions", 0, "Maximum active sessions per user")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.StringVar(&redisAddress, "redis", "", "Redis address host:port")
	fs.StringVar(&amqpURL, "amqp", "", "RabbitMQ URL")
	fs.IntVar(&hashWorkers, "hash-workers", 0, "Password hashing workers")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			JWTSecretKey:             jwtSecret,
			JWTAlgorithm:             jwtAlgorithm,
			AccessTokenExpireMinutes: accessMinutes,
			RefreshTokenExpireDays:   refreshDays,
			SessionExpireDays:        sessionDays,
			MaxActiveSessions:        maxSessions,
		},
		Storage: Storage{
			DB:    DB{DSN: databaseDSN},
			Redis: Redis{Address: redisAddress},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{AMQPURL: amqpURL},
		Workers: Workers{HashPoolSize: hashWorkers},

		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is
// "localhost" or empty, and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1..65535")
	}

	if host != "" && host != "localhost" {
		if ip := net.ParseIP(host); ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
