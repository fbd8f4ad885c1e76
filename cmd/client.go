package cmd

import (
	"HomeStatus/client"

	"github.com/spf13/cobra"
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "启动设备状态上报客户端",
	Long:  `在本机后台运行状态上报客户端，周期性发送心跳并在播放状态变化时即时推送`,
	Run: func(cmd *cobra.Command, args []string) {
		client.Run()
	},
}

func init() {
	rootCmd.AddCommand(clientCmd)
}
