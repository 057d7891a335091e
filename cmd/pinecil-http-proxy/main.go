package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/pinecil-go/pinecil/internal/log"
	"github.com/pinecil-go/pinecil/pkg/cli"
	"github.com/pinecil-go/pinecil/pkg/proxy"
)

const (
	defaultPort     = 8080
	defaultBurst    = 5
	defaultTokenTTL = 30 * 24 * time.Hour
	userAgent       = "pinecil-http-proxy"
)

const (
	EnvTlsCert     = "PINECIL_HTTP_PROXY_TLS_CERT"
	EnvTlsKey      = "PINECIL_HTTP_PROXY_TLS_KEY"
	EnvHost        = "PINECIL_HTTP_PROXY_HOST"
	EnvPort        = "PINECIL_HTTP_PROXY_PORT"
	EnvTimeout     = "PINECIL_HTTP_PROXY_TIMEOUT"
	EnvTokenSecret = "PINECIL_HTTP_PROXY_TOKEN_SECRET"
	EnvRate        = "PINECIL_HTTP_PROXY_RATE"
	EnvVerbose     = "PINECIL_VERBOSE"
)

const nonLocalhostWarning = `
Do not listen on a network interface without setting a token secret. Anyone who can reach the
proxy can change the iron's settings, including its setpoint.`

type HttpProxyConfig struct {
	keyFilename  string
	certFilename string
	selfSigned   bool
	verbose      bool
	host         string
	port         int
	timeout      time.Duration
	tokenSecret  string
	issueToken   string
	tokenTTL     time.Duration
	rate         float64
	burst        int
	mdns         bool
	mdnsName     string
	origins      string
	noFirmware   bool
}

var (
	httpConfig = &HttpProxyConfig{}
)

func init() {
	flag.StringVar(&httpConfig.certFilename, "cert", "", "TLS certificate chain `file`")
	flag.StringVar(&httpConfig.keyFilename, "tls-key", "", "Server TLS private key `file`")
	flag.BoolVar(&httpConfig.selfSigned, "self-signed", false, "Serve TLS with a generated self-signed certificate")
	flag.BoolVar(&httpConfig.verbose, "verbose", false, "Enable verbose logging")
	flag.StringVar(&httpConfig.host, "host", "localhost", "Proxy server `hostname`")
	flag.IntVar(&httpConfig.port, "port", defaultPort, "`Port` to listen on")
	flag.DurationVar(&httpConfig.timeout, "timeout", proxy.DefaultTimeout, "Timeout interval when talking to the iron")
	flag.StringVar(&httpConfig.tokenSecret, "token-secret", "", "HMAC `secret` for client access tokens. Defaults to $"+EnvTokenSecret+".")
	flag.StringVar(&httpConfig.issueToken, "issue-token", "", "Print an access token for `subject` and exit")
	flag.DurationVar(&httpConfig.tokenTTL, "token-ttl", defaultTokenTTL, "Lifetime of tokens printed by -issue-token (0 for no expiry)")
	flag.Float64Var(&httpConfig.rate, "rate", 0, "Maximum requests per second across all clients (0 for unlimited)")
	flag.IntVar(&httpConfig.burst, "burst", defaultBurst, "Request burst allowed by -rate")
	flag.BoolVar(&httpConfig.mdns, "mdns", false, "Advertise the proxy on the local network")
	flag.StringVar(&httpConfig.mdnsName, "mdns-name", "", "mDNS instance `name`. Defaults to the iron's name.")
	flag.StringVar(&httpConfig.origins, "stream-origins", "", "Comma-separated browser origin `patterns` allowed to open the live stream")
	flag.BoolVar(&httpConfig.noFirmware, "no-firmware-check", false, "Disable the firmware release endpoint")
}

func Usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [OPTION...]\n", os.Args[0])
	fmt.Fprintf(out, "\nA server that exposes a REST and websocket API for a Pinecil soldering iron")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, nonLocalhostWarning)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Options:")
	flag.PrintDefaults()
}

func newAuthenticator() (*proxy.Authenticator, error) {
	if httpConfig.tokenSecret == "" {
		return nil, nil
	}
	return proxy.NewAuthenticator([]byte(httpConfig.tokenSecret))
}

func splitOrigins(s string) []string {
	var origins []string
	for _, origin := range strings.Split(s, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func main() {
	config, err := cli.NewConfig(cli.FlagAll)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %s\n", err)
		os.Exit(1)
	}

	defer func() {
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
	}()

	flag.Usage = Usage
	config.RegisterCommandLineFlags()
	flag.Parse()
	if err = readFromEnvironment(); err != nil {
		return
	}
	config.ReadFromEnvironment()
	if err = config.LoadFile(config.ConfigFile); err != nil {
		return
	}

	if httpConfig.verbose {
		log.SetLevel(log.LevelDebug)
	}

	auth, err := newAuthenticator()
	if err != nil {
		return
	}
	if httpConfig.issueToken != "" {
		if auth == nil {
			err = fmt.Errorf("-issue-token requires -token-secret or $%s", EnvTokenSecret)
			return
		}
		var token string
		if token, err = auth.IssueToken(httpConfig.issueToken, httpConfig.tokenTTL); err != nil {
			return
		}
		fmt.Println(token)
		return
	}

	if httpConfig.host != "localhost" && auth == nil {
		fmt.Fprintln(os.Stderr, nonLocalhostWarning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pinecil, err := config.Connect(ctx)
	if err != nil {
		return
	}
	defer config.Close()

	var releases proxy.ReleaseChecker
	if !httpConfig.noFirmware {
		checker, checkerErr := config.UpdateChecker(userAgent)
		if checkerErr != nil {
			log.Warning("Firmware checks disabled: %s", checkerErr)
		} else {
			releases = checker
		}
	}

	log.Debug("Creating proxy")
	p := proxy.New(pinecil, releases)
	defer p.Close()
	p.Timeout = httpConfig.timeout
	p.Auth = auth
	p.StreamOrigins = splitOrigins(httpConfig.origins)
	if httpConfig.rate > 0 {
		p.Limiter = rate.NewLimiter(rate.Limit(httpConfig.rate), httpConfig.burst)
	}

	addr := fmt.Sprintf("%s:%d", httpConfig.host, httpConfig.port)
	var server *http.Server
	if httpConfig.selfSigned {
		var certPEM string
		if server, certPEM, err = NewServer(addr, httpConfig.host); err != nil {
			return
		}
		log.Info("Serving self-signed certificate:\n%s", certPEM)
	} else {
		server = &http.Server{Addr: addr, ReadHeaderTimeout: 10 * time.Second}
	}
	server.Handler = p

	if httpConfig.mdns {
		name := httpConfig.mdnsName
		if name == "" {
			name = pinecil.Name()
		}
		go func() {
			metadata := map[string]string{"address": pinecil.Address(), "tls": strconv.FormatBool(useTLS())}
			if err := proxy.Advertise(ctx, name, httpConfig.port, metadata); err != nil {
				log.Warning("mDNS advertisement failed: %s", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Info("Listening on %s", addr)
	if httpConfig.selfSigned {
		err = server.ListenAndServeTLS("", "")
	} else if useTLS() {
		err = server.ListenAndServeTLS(httpConfig.certFilename, httpConfig.keyFilename)
	} else {
		err = server.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		log.Info("Server stopped")
		err = nil
	}
}

func useTLS() bool {
	return httpConfig.selfSigned || httpConfig.certFilename != ""
}

// readFromEnvironment applies configuration from environment variables.
// Values are not overwritten.
func readFromEnvironment() error {
	if httpConfig.certFilename == "" {
		httpConfig.certFilename = os.Getenv(EnvTlsCert)
	}

	if httpConfig.keyFilename == "" {
		httpConfig.keyFilename = os.Getenv(EnvTlsKey)
	}

	if httpConfig.host == "localhost" {
		host, ok := os.LookupEnv(EnvHost)
		if ok {
			httpConfig.host = host
		}
	}

	if httpConfig.tokenSecret == "" {
		httpConfig.tokenSecret = os.Getenv(EnvTokenSecret)
	}

	if !httpConfig.verbose {
		verbose := os.Getenv(EnvVerbose)
		httpConfig.verbose = verbose != "" && verbose != "false" && verbose != "0"
	}

	var err error
	if httpConfig.port == defaultPort {
		if port, ok := os.LookupEnv(EnvPort); ok {
			httpConfig.port, err = strconv.Atoi(port)
			if err != nil {
				return fmt.Errorf("invalid port: %s", port)
			}
		}
	}

	if httpConfig.timeout == proxy.DefaultTimeout {
		if timeoutEnv, ok := os.LookupEnv(EnvTimeout); ok {
			httpConfig.timeout, err = time.ParseDuration(timeoutEnv)
			if err != nil {
				return fmt.Errorf("invalid timeout: %s", timeoutEnv)
			}
		}
	}

	if httpConfig.rate == 0 {
		if rateEnv, ok := os.LookupEnv(EnvRate); ok {
			httpConfig.rate, err = strconv.ParseFloat(rateEnv, 64)
			if err != nil || httpConfig.rate < 0 {
				return fmt.Errorf("invalid rate: %s", rateEnv)
			}
		}
	}

	return nil
}
