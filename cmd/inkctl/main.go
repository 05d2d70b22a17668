// inkctl 是 inkwell 的运维命令行：管理用户与角色、生成演示数据、补写 slug。
package main

import (
	"fmt"
	"os"

	"github.com/inkwell/internal/config"
)

func main() {
	if err := newRootCmd(&app{cfg: config.Load()}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
