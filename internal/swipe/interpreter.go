// Package swipe 把一次指针拖拽解释为左/右滑决策或回弹。
package swipe

import (
	"math"

	"github.com/predictpark/predictpark/internal/domain"
)

const (
	// DefaultThreshold 提交所需的水平位移（严格大于）
	DefaultThreshold = 150.0

	rotationDivisor   = 15.0
	opacityDivisor    = 300.0
	dragScale         = 1.05
	indicatorDeadzone = 50.0
)

// Direction 已提交的滑动方向
type Direction int

const (
	Left Direction = iota + 1
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "none"
}

// Side 右滑 = UP，左滑 = DOWN
func (d Direction) Side() domain.OutcomeType {
	if d == Right {
		return domain.OutcomeUp
	}
	return domain.OutcomeDown
}

// Offset 相对手势起点的位移
type Offset struct {
	X, Y float64
}

// Interpreter 单个手势的状态机。非并发安全，由持有者的事件循环独占。
type Interpreter struct {
	threshold float64

	startX, startY float64
	offset         Offset
	dragging       bool
}

// New threshold <= 0 时使用 DefaultThreshold
func New(threshold float64) *Interpreter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Interpreter{threshold: threshold}
}

func (in *Interpreter) Threshold() float64 { return in.threshold }
func (in *Interpreter) Offset() Offset     { return in.offset }
func (in *Interpreter) Dragging() bool     { return in.dragging }

// Begin 记录起点。重复调用直接覆盖起点。
func (in *Interpreter) Begin(x, y float64) {
	in.startX, in.startY = x, y
	in.dragging = true
}

// Update 拖拽中刷新位移，否则忽略
func (in *Interpreter) Update(x, y float64) {
	if !in.dragging {
		return
	}
	in.offset = Offset{X: x - in.startX, Y: y - in.startY}
}

// End 松手。超过阈值时返回方向并保留位移供退出动画使用；否则位移归零（回弹）。
func (in *Interpreter) End() (Direction, bool) {
	if !in.dragging {
		return 0, false
	}
	in.dragging = false
	if math.Abs(in.offset.X) > in.threshold {
		if in.offset.X > 0 {
			return Right, true
		}
		return Left, true
	}
	in.offset = Offset{}
	return 0, false
}

// Acknowledge 外部已设定方向（退出动画开始），为下一张卡清空状态
func (in *Interpreter) Acknowledge() {
	in.offset = Offset{}
	in.dragging = false
}

// Transform 渲染参数
type Transform struct {
	TranslateX, TranslateY float64
	RotationDeg            float64
	Opacity                float64
	Scale                  float64
	// Indicator 为 0 表示不显示
	Indicator Direction
	Strength  float64
}

// Transform 根据当前位移计算渲染参数，NaN 原样传播
func (in *Interpreter) Transform() Transform {
	x := in.offset.X
	t := Transform{
		TranslateX:  x,
		TranslateY:  in.offset.Y,
		RotationDeg: x / rotationDivisor,
		Opacity:     1 - math.Abs(x)/opacityDivisor,
		Scale:       1,
	}
	if in.dragging {
		t.Scale = dragScale
	}
	switch {
	case x > indicatorDeadzone:
		t.Indicator = Right
	case x < -indicatorDeadzone:
		t.Indicator = Left
	}
	if t.Indicator != 0 {
		t.Strength = math.Min(math.Abs(x)/in.threshold, 1)
	}
	return t
}
