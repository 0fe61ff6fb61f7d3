package report

import (
	"fmt"

	"PassengerSatisfaction/src/config"
	"PassengerSatisfaction/src/processor"
)

// 图表用到的规范列名
const (
	ColGender       = "gender"
	ColCustomerType = "customer_type"
	ColTravelType   = "travel_type"
	ColSeatClass    = "seat_class"
	ColAge          = "age"
	ColSatisfaction = "satisfaction"
)

const (
	labelPassengers = "Cantidad de pasajeros"
	labelAge        = "Edad de los pasajeros"
)

// Builder 按固定顺序生成问卷分析的全部图表
type Builder struct {
	cfg  *config.Config
	dcfg *config.DataConfig
}

func NewBuilder(cfg *config.Config, dcfg *config.DataConfig) *Builder {
	return &Builder{cfg: cfg, dcfg: dcfg}
}

// Build 任何一步失败都直接返回，不生成残缺的报表
func (b *Builder) Build(t *processor.Table) ([]Chart, error) {
	steps := []func(*processor.Table) ([]Chart, error){
		b.genderPie,
		b.seatClassByGender,
		b.customerTypeByGender,
		b.travelTypeBySeatClass,
		b.ageHistogram,
		func(t *processor.Table) ([]Chart, error) {
			return b.ageBy(t, ColGender, "Análisis de la edad de los pasajeros", "Género de los pasajeros")
		},
		func(t *processor.Table) ([]Chart, error) {
			return b.ageBy(t, ColTravelType, "Análisis de la edad de los pasajeros según clase de viaje", "Tipo de viaje")
		},
		b.satisfactionByScore,
	}

	var charts []Chart
	for _, step := range steps {
		list, err := step(t)
		if err != nil {
			return nil, err
		}
		charts = append(charts, list...)
	}

	// 按顺序编号，工作表名唯一
	for i := range charts {
		charts[i].Name = fmt.Sprintf("%02d_%s", i+1, charts[i].Name)
	}
	return charts, nil
}

// 1. 乘客性别分布
func (b *Builder) genderPie(t *processor.Table) ([]Chart, error) {
	summary, err := t.CountBy(ColGender)
	if err != nil {
		return nil, err
	}
	cats, s, err := countSeries(summary, ColGender, labelPassengers)
	if err != nil {
		return nil, err
	}
	return []Chart{{
		Name:       "genero",
		Kind:       Pie,
		Title:      "Distribución de pasajeros por genero",
		Categories: cats,
		Series:     []Series{s},
	}}, nil
}

// 2. 各舱位的性别分布
func (b *Builder) seatClassByGender(t *processor.Table) ([]Chart, error) {
	m, err := processor.CrossTab(t.Frame(), ColSeatClass, ColGender)
	if err != nil {
		return nil, err
	}
	cats, list := matrixSeries(m)
	return []Chart{{
		Name:       "genero_clase",
		Kind:       Bar,
		Title:      "Distribución de los pasajeros con respecto a su genero en las clases de asientos",
		XLabel:     labelPassengers,
		YLabel:     "clase de asiento",
		Categories: cats,
		Series:     list,
	}}, nil
}

// 3. 客户类型：全部 / 男 / 女
func (b *Builder) customerTypeByGender(t *processor.Table) ([]Chart, error) {
	male := b.label(ColGender, "Male")
	female := b.label(ColGender, "Female")
	subsets := []struct {
		name   string
		title  string
		values []string
	}{
		{"cliente_general", "General", []string{male, female}},
		{"cliente_hombres", "Hombres", []string{male}},
		{"cliente_mujeres", "Mujeres", []string{female}},
	}

	var charts []Chart
	for _, sub := range subsets {
		subset, err := t.Where(ColGender, sub.values...)
		if err != nil {
			return nil, err
		}
		summary, err := subset.CountBy(ColCustomerType)
		if err != nil {
			return nil, err
		}
		cats, s, err := countSeries(summary, ColCustomerType, "count")
		if err != nil {
			return nil, err
		}
		charts = append(charts, Chart{
			Name:       sub.name,
			Kind:       Count,
			Title:      "Distribución de los pasajeros " + sub.title,
			XLabel:     ColCustomerType,
			YLabel:     "count",
			Categories: cats,
			Series:     []Series{s},
		})
	}
	return charts, nil
}

// 4. 出行目的 x 舱位 热力图
func (b *Builder) travelTypeBySeatClass(t *processor.Table) ([]Chart, error) {
	m, err := processor.CrossTab(t.Frame(), ColTravelType, ColSeatClass)
	if err != nil {
		return nil, err
	}
	return []Chart{{
		Name:   "viaje_clase",
		Kind:   Heatmap,
		Title:  "Clase de asiento seleccionado según tipo de viaje (MAPA DE CALOR)",
		XLabel: "Clase de asiento",
		YLabel: "Tipo de viaje",
		Matrix: &m,
	}}, nil
}

// 5. 年龄直方图
func (b *Builder) ageHistogram(t *processor.Table) ([]Chart, error) {
	bins, err := processor.Histogram(t.Frame(), ColAge, b.binWidth())
	if err != nil {
		return nil, err
	}
	cats := make([]string, len(bins))
	values := make([]float64, len(bins))
	for i, bin := range bins {
		cats[i] = bin.Label()
		values[i] = float64(bin.Count)
	}
	return []Chart{{
		Name:       "edad",
		Kind:       Histogram,
		Title:      "Cantidad de pasajeros según la edad",
		XLabel:     "Edades pasajeros",
		YLabel:     labelPassengers,
		Categories: cats,
		Series:     []Series{{Name: labelPassengers, Values: values}},
	}}, nil
}

// 6/7. 按分组列的年龄箱线图和小提琴图
func (b *Builder) ageBy(t *processor.Table, groupCol, title, xLabel string) ([]Chart, error) {
	df := t.Frame()
	boxes, err := processor.BoxStats(df, ColAge, groupCol)
	if err != nil {
		return nil, err
	}
	dist, err := processor.Distributions(df, ColAge, groupCol, b.binWidth())
	if err != nil {
		return nil, err
	}

	cats := make([]string, len(dist.Bins))
	for i, bin := range dist.Bins {
		cats[i] = bin.Label()
	}
	list := make([]Series, len(dist.Groups))
	for i, g := range dist.Groups {
		list[i] = Series{Name: g, Values: dist.Share[g]}
	}

	return []Chart{
		{
			Name:   "box_edad_" + groupCol,
			Kind:   Box,
			Title:  title,
			XLabel: xLabel,
			YLabel: labelAge,
			Boxes:  boxes,
		},
		{
			Name:       "violin_edad_" + groupCol,
			Kind:       Violin,
			Title:      title,
			XLabel:     labelAge,
			YLabel:     xLabel,
			Categories: cats,
			Series:     list,
		},
	}, nil
}

// 8. 各服务评分与满意度
func (b *Builder) satisfactionByScore(t *processor.Table) ([]Chart, error) {
	var charts []Chart
	for _, st := range b.dcfg.ScoreTitles {
		m, err := processor.CrossTab(t.Frame(), st.Column, ColSatisfaction)
		if err != nil {
			return nil, err
		}
		cats, list := matrixSeries(m)
		charts = append(charts, Chart{
			Name:       st.Column,
			Kind:       Count,
			Title:      "Satisfacción del cliente según su opinión sobre " + st.Title,
			XLabel:     "Puntaje asignado por los pasajeros",
			YLabel:     labelPassengers,
			Categories: cats,
			Series:     list,
		})
	}
	return charts, nil
}

// label 替换后的分类取值，没有配置时用原值
func (b *Builder) label(col, value string) string {
	if to, ok := b.dcfg.GetRelabel(col)[value]; ok {
		return to
	}
	return value
}

func (b *Builder) binWidth() float64 {
	if b.cfg == nil || b.cfg.AgeBinWidth <= 0 {
		return 5
	}
	return float64(b.cfg.AgeBinWidth)
}
