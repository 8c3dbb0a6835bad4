package layout

import "go.uber.org/zap"

// Option 配置表格布局的可选依赖。
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger 设置日志记录器，默认不输出。
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func newOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
