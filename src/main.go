package main

import (
	"github.com/ProjectsTask/EasySwapMarket/src/cmd"
)

func main() {
	// 解析命令行参数并执行子命令, daemon 子命令启动市场服务
	cmd.Execute()
}
