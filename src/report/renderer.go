package report

import (
	"context"
	"fmt"
)

// Renderer 把一张图表输出到某种介质
type Renderer interface {
	Render(chart Chart) error
}

// RenderAll 按顺序输出，遇到错误立即停止
func RenderAll(ctx context.Context, r Renderer, charts []Chart) error {
	for _, chart := range charts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := chart.Validate(); err != nil {
			return err
		}
		if err := r.Render(chart); err != nil {
			return fmt.Errorf("输出图表 %s 失败: %w", chart.Name, err)
		}
	}
	return nil
}

// Multi 同时输出到多个 Renderer
type Multi []Renderer

func (m Multi) Render(chart Chart) error {
	for _, r := range m {
		if err := r.Render(chart); err != nil {
			return err
		}
	}
	return nil
}
