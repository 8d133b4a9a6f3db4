package cmd

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapMarket/src/api/router"
	"github.com/ProjectsTask/EasySwapMarket/src/app"
	"github.com/ProjectsTask/EasySwapMarket/src/config"
	"github.com/ProjectsTask/EasySwapMarket/src/pkg/xzap"
	"github.com/ProjectsTask/EasySwapMarket/src/service/svc"
)

// DaemonCmd 定义 "daemon" 子命令, 启动市场服务
var DaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "run marketplace api server.",
	Long:  "run marketplace api server.",
	Run: func(cmd *cobra.Command, args []string) {
		wg := &sync.WaitGroup{}
		wg.Add(1)

		ctx, cancel := context.WithCancel(context.Background())

		// 服务启动或运行过程中的错误通过该 chan 通知主流程退出
		onExit := make(chan error, 1)

		go func() {
			defer wg.Done()

			// 1. 读取和解析配置文件
			cfg, err := config.UnmarshalCmdConfig()
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to unmarshal config", zap.Error(err))
				onExit <- err
				return
			}

			// 2. 初始化服务上下文: 日志、DB、Redis 与领域服务
			serverCtx, err := svc.NewServiceContext(ctx, cfg)
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to create service context", zap.Error(err))
				onExit <- err
				return
			}

			xzap.WithContext(ctx).Info("market server start", zap.Any("config", cfg))

			// 3. 可选的 pprof 监控端口
			if cfg.Monitor != nil && cfg.Monitor.PprofEnable {
				go func() {
					_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", cfg.Monitor.PprofPort), nil)
				}()
			}

			// 4. 初始化路由并启动 HTTP 服务 (阻塞)
			r := router.NewRouter(serverCtx)
			platform, err := app.NewPlatform(cfg, r, serverCtx)
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to create platform", zap.Error(err))
				onExit <- err
				return
			}
			platform.Start()
		}()

		// 监听 SIGINT/SIGTERM 实现优雅退出
		onSignal := make(chan os.Signal, 1)
		signal.Notify(onSignal, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-onSignal:
			cancel()
			xzap.WithContext(ctx).Info("Exit by signal", zap.String("signal", sig.String()))
		case err := <-onExit:
			cancel()
			xzap.WithContext(ctx).Error("Exit by error", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(DaemonCmd)
}
