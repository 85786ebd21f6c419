package main

// main.go — process entrypoint.
//
// The teacher parses its flags by hand (flag.String + manual "Node<N>"
// validation) and blocks forever on select{}. This replaces that with a
// cobra command so config-file loading and flag parsing share one surface,
// but keeps the same shape: validate startup params, construct the node,
// start background work, block until told to stop.

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"swarmnode/node"
	"swarmnode/transport/udpframe"
)

// fileConfig mirrors the flag set for loading via --config; any flag passed
// explicitly on the command line overrides the corresponding file value.
type fileConfig struct {
	ID           *int     `yaml:"id"`
	AgentCount   *int     `yaml:"agents"`
	Capabilities []string `yaml:"capabilities"`
	Listen       string   `yaml:"listen"`
	StatusAddr   string   `yaml:"statusAddr"`
	Peers        []string `yaml:"peers"`
}

func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

func main() {
	var (
		id           int
		agentCount   int
		capabilities []string
		configPath   string
		listenAddr   string
		statusAddr   string
		peers        []string
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run one decentralized swarm coordination node",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				fc, err := loadFileConfig(configPath)
				if err != nil {
					return err
				}
				if !cmd.Flags().Changed("id") && fc.ID != nil {
					id = *fc.ID
				}
				if !cmd.Flags().Changed("agents") && fc.AgentCount != nil {
					agentCount = *fc.AgentCount
				}
				if !cmd.Flags().Changed("capabilities") && len(fc.Capabilities) > 0 {
					capabilities = fc.Capabilities
				}
				if !cmd.Flags().Changed("listen") && fc.Listen != "" {
					listenAddr = fc.Listen
				}
				if !cmd.Flags().Changed("status-addr") && fc.StatusAddr != "" {
					statusAddr = fc.StatusAddr
				}
				if !cmd.Flags().Changed("peer") && len(fc.Peers) > 0 {
					peers = fc.Peers
				}
			}

			params := node.StartupParams{ID: id, AgentCount: agentCount, Capabilities: capabilities}
			n, err := params.Build()
			if err != nil {
				logrus.WithError(err).Fatal("invalid startup parameters")
			}

			log := logrus.WithField("node_id", n.ID)

			if listenAddr == "" {
				logrus.Fatal("--listen is required")
			}
			adapter, err := udpframe.Open(listenAddr, peers)
			if err != nil {
				logrus.WithError(err).Fatal("opening transport")
			}
			defer adapter.Close()
			go adapter.Listen(n)

			if statusAddr != "" {
				mux := http.NewServeMux()
				mux.HandleFunc("/status", n.StatusHandler())
				go func() {
					if err := http.ListenAndServe(statusAddr, mux); err != nil {
						log.WithError(err).Warn("status server stopped")
					}
				}()
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.WithFields(logrus.Fields{
				"listen":       listenAddr,
				"peers":        strings.Join(peers, ","),
				"capabilities": strings.Join(capabilities, ","),
			}).Info("starting swarm node")
			n.Run(ctx, adapter)
			return nil
		},
	}

	runCmd.Flags().IntVar(&id, "id", -1, "node id in [0,255]")
	runCmd.Flags().IntVar(&agentCount, "agents", 0, "informational swarm size")
	runCmd.Flags().StringSliceVar(&capabilities, "capabilities", nil, "comma-separated capability tags this node offers")
	runCmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file; explicit flags take precedence")
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "local UDP address to bind, e.g. 0.0.0.0:9000")
	runCmd.Flags().StringVar(&statusAddr, "status-addr", "", "optional HTTP address to serve /status on, e.g. localhost:8080")
	runCmd.Flags().StringArrayVar(&peers, "peer", nil, "peer UDP address; repeat for each peer")

	root := &cobra.Command{
		Use:   "swarmnode",
		Short: "Decentralized swarm coordination node",
	}
	root.AddCommand(runCmd)

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("swarmnode exited with error")
	}
}
