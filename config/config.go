// Package config 读取 quire 的 YAML 配置：页面与表格默认值、图片处理以及日志。
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	validator "github.com/go-playground/validator/v10"
	yaml "gopkg.in/yaml.v3"

	"github.com/ByLCY/quire/compose"
	"github.com/ByLCY/quire/layout"
)

//go:embed config.yaml
var defaultConfig []byte

type (
	PageConfig struct {
		Width           float64 `yaml:"width" validate:"gt=0"`
		Height          float64 `yaml:"height" validate:"gt=0"`
		Margin          float64 `yaml:"margin" validate:"gte=0"`
		HeaderHeight    float64 `yaml:"header_height" validate:"gte=0"`
		FooterHeight    float64 `yaml:"footer_height" validate:"gte=0"`
		ContinuationGap float64 `yaml:"continuation_gap" validate:"gte=0"`
	}

	DocumentConfig struct {
		Page         PageConfig `yaml:"page"`
		BlockSpacing float64    `yaml:"block_spacing" validate:"gte=0"`
		Font         string     `yaml:"font"`
		FontSize     float64    `yaml:"font_size" validate:"gt=0"`
		LineSpacing  float64    `yaml:"line_spacing" validate:"gte=0"`
		Hyphenate    bool       `yaml:"hyphenate"`
	}

	TableConfig struct {
		BorderWidth       float64 `yaml:"border_width" validate:"gte=0"`
		CellPadding       float64 `yaml:"cell_padding" validate:"gte=0"`
		FontSize          float64 `yaml:"font_size" validate:"gt=0"`
		LineSpacing       float64 `yaml:"line_spacing" validate:"gte=0"`
		Hyphenate         bool    `yaml:"hyphenate"`
		BorderColor       string  `yaml:"border_color" validate:"required,hexcolor"`
		TextColor         string  `yaml:"text_color" validate:"required,hexcolor"`
		HeaderBackground  string  `yaml:"header_background" validate:"omitempty,hexcolor"`
		EvenRowBackground string  `yaml:"even_row_background" validate:"omitempty,hexcolor"`
		OddRowBackground  string  `yaml:"odd_row_background" validate:"omitempty,hexcolor"`
	}

	ImagesConfig struct {
		MaxSize int `yaml:"max_size" validate:"gte=0"`
	}

	Config struct {
		Version  int            `yaml:"version" validate:"eq=1"`
		Document DocumentConfig `yaml:"document"`
		Table    TableConfig    `yaml:"table"`
		Images   ImagesConfig   `yaml:"images"`
		Logging  LoggingConfig  `yaml:"logging"`
	}
)

// pageChecks 要求页眉、页脚与上下边距之外仍留有正文高度。
func pageChecks(sl validator.StructLevel) {
	p := sl.Current().Interface().(PageConfig)
	if p.Height-2*p.Margin-p.HeaderHeight-p.FooterHeight <= 0 {
		sl.ReportError(p.Height, "height", "Height", "usable_height", "")
	}
	if p.Width-2*p.Margin <= 0 {
		sl.ReportError(p.Width, "width", "Width", "usable_width", "")
	}
}

func validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(pageChecks, PageConfig{})
	return v.Struct(cfg)
}

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// 只接受已定义的字段，因此不能直接用 yaml.Unmarshal
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	if process {
		if err := validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration 先载入内嵌的默认配置，再把 path 指向的文件覆盖在其上并校验。
// path 为空时只返回默认配置。
func LoadConfiguration(path string) (*Config, error) {
	haveFile := len(path) > 0

	cfg, err := unmarshalConfig(defaultConfig, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("默认配置无效: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, true)
	if err != nil {
		return nil, fmt.Errorf("配置文件 %s 无效: %w", path, err)
	}
	return cfg, nil
}

// Prepare 返回内嵌的默认配置文件内容。
func Prepare() []byte {
	return bytes.Clone(defaultConfig)
}

// Dump 把当前配置序列化为 YAML。
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("序列化配置失败: %w", err)
	}
	return data, nil
}

// Settings 把配置转换为排版默认值。
func (cfg *Config) Settings() (compose.Settings, error) {
	doc, tbl := cfg.Document, cfg.Table
	set := compose.Settings{
		PageWidth:       doc.Page.Width,
		PageHeight:      doc.Page.Height,
		Margin:          doc.Page.Margin,
		HeaderHeight:    doc.Page.HeaderHeight,
		FooterHeight:    doc.Page.FooterHeight,
		ContinuationGap: doc.Page.ContinuationGap,
		BlockSpacing:    doc.BlockSpacing,
		Font:            layout.FontRef(doc.Font),
		FontSize:        doc.FontSize,
		LineSpacing:     doc.LineSpacing,
		Hyphenate:       doc.Hyphenate,
		Table: layout.TableStyle{
			BorderWidth: tbl.BorderWidth,
			CellPadding: tbl.CellPadding,
			FontSize:    tbl.FontSize,
			LineSpacing: tbl.LineSpacing,
			Hyphenate:   tbl.Hyphenate,
		},
	}

	var err error
	if set.Table.BorderColor, err = layout.ParseColor(tbl.BorderColor); err != nil {
		return set, err
	}
	if set.Table.TextColor, err = layout.ParseColor(tbl.TextColor); err != nil {
		return set, err
	}
	backgrounds := []struct {
		src string
		dst **layout.Color
	}{
		{tbl.HeaderBackground, &set.Table.HeaderBackground},
		{tbl.EvenRowBackground, &set.Table.EvenRowBackground},
		{tbl.OddRowBackground, &set.Table.OddRowBackground},
	}
	for _, bg := range backgrounds {
		if bg.src == "" {
			continue
		}
		c, err := layout.ParseColor(bg.src)
		if err != nil {
			return set, err
		}
		*bg.dst = &c
	}
	return set, nil
}
