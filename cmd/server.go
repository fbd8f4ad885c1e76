package cmd

import (
	"HomeStatus/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动状态收集服务器",
	Long:  `启动状态收集服务器，接收设备心跳并提供聚合的在线状态视图`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
