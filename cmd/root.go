package cmd

import (
	"fmt"
	"os"

	"github.com/kvprovider/kvprovider/cmd/admin"
	"github.com/kvprovider/kvprovider/cmd/kv"
	"github.com/kvprovider/kvprovider/cmd/serve"
	"github.com/kvprovider/kvprovider/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (
	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "kvprovider",
		Short: "pluggable key/value storage provider",
		Long: fmt.Sprintf(`kvprovider (v%s)

A pluggable remote key/value storage provider written in Go: a single
process exposes any number of named databases, each backed by a
pluggable storage engine, over a common batched RPC surface.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("kvprovider v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(admin.AdminCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute runs RootCmd with its child commands and flags, and exits the
// process with status 1 if the command returns an error. It only needs to
// happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
