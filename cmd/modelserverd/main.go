/*
Copyright The Volcano Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/volcano-sh/kthena-modelcore/cmd/modelserverd/app"
	"github.com/volcano-sh/kthena-modelcore/pkg/logging"
)

var log = logging.NewLogger("modelserverd")

func main() {
	var (
		port       string
		configFile string
		jwksURI    string
	)

	pflag.StringVar(&port, "port", "8080", "Server listen port")
	pflag.StringVar(&configFile, "config", "", "Path to a server config file listing models to load at startup")
	pflag.StringVar(&jwksURI, "jwks-uri", "", "JWKS endpoint for verifying bearer tokens on infer requests (empty disables JWT authentication)")
	pflag.Parse()

	pflag.CommandLine.VisitAll(func(f *pflag.Flag) {
		log.Debugf("flag: %s=%s", f.Name, f.Value.String())
	})

	ctx, cancel := context.WithCancel(context.Background())
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalCh
		cancel()
	}()

	if err := app.NewServer(port, configFile, jwksURI).Run(ctx); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}
