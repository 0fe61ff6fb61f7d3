package config

import "time"

// Default 程序内置配置，配置文件不存在时使用
func Default() *Config {
	cfg := &Config{}
	cfg.Input.Path = "aerolinea.csv"
	cfg.Input.Delimiter = ","
	cfg.Output.Dir = "output"
	cfg.Output.Workbook = "report.xlsx"
	cfg.AgeBinWidth = 5
	cfg.LogName = "app.log"
	cfg.LogMaxSize = "10 * 1024 * 1024"
	cfg.LogLevel = "INFO"
	cfg.DataDir = "data"
	cfg.Email.TargetSubject = "encuesta"
	cfg.Email.CheckInterval = Duration(5 * time.Minute)
	cfg.SendEmail.Subject = "Encuesta de satisfacción de pasajeros"
	return cfg
}

// DefaultDataConfig 航空公司乘客满意度问卷(Kaggle train.csv)的表结构
func DefaultDataConfig() *DataConfig {
	return &DataConfig{
		DropColumns: []string{"Unnamed: 0", "id"},
		Columns: []Column{
			{Source: "Gender", Name: "gender", Kind: KindCategory},
			{Source: "Customer Type", Name: "customer_type", Kind: KindCategory},
			{Source: "Age", Name: "age", Kind: KindInt},
			{Source: "Type of Travel", Name: "travel_type", Kind: KindCategory},
			{Source: "Class", Name: "seat_class", Kind: KindCategory},
			{Source: "Flight Distance", Name: "flight_distance", Kind: KindInt},
			{Source: "Inflight wifi service", Name: "wifi", Kind: KindScore},
			{Source: "Departure/Arrival time convenient", Name: "schedule_convenience", Kind: KindScore},
			{Source: "Ease of Online booking", Name: "online_booking", Kind: KindScore},
			{Source: "Gate location", Name: "gate_location", Kind: KindScore},
			{Source: "Food and drink", Name: "food_drink", Kind: KindScore},
			{Source: "Online boarding", Name: "online_checkin", Kind: KindScore},
			{Source: "Seat comfort", Name: "seat_comfort", Kind: KindScore},
			{Source: "Inflight entertainment", Name: "inflight_entertainment", Kind: KindScore},
			{Source: "On-board service", Name: "onboard_service", Kind: KindScore},
			{Source: "Leg room service", Name: "leg_room", Kind: KindScore},
			{Source: "Baggage handling", Name: "baggage_handling", Kind: KindScore},
			{Source: "Checkin service", Name: "checkin_service", Kind: KindScore},
			{Source: "Inflight service", Name: "inflight_service", Kind: KindScore},
			{Source: "Cleanliness", Name: "cleanliness", Kind: KindScore},
			{Source: "Departure Delay in Minutes", Name: "departure_delay", Kind: KindInt},
			{Source: "Arrival Delay in Minutes", Name: "arrival_delay", Kind: KindFloat},
			{Source: "satisfaction", Name: "satisfaction", Kind: KindCategory},
		},
		Relabel: map[string]map[string]string{
			"travel_type": {
				"Business travel": "Viaje de negocios",
				"Personal Travel": "vacaciones",
			},
			"satisfaction": {
				"neutral or dissatisfied": "neutral o no satisfecho",
				"satisfied":               "satisfecho",
			},
			"gender": {
				"Male":   "Masculino",
				"Female": "Femenino",
			},
		},
		ScoreTitles: []ScoreTitle{
			{Column: "wifi", Title: "servicio de wifi abordo"},
			{Column: "online_booking", Title: "si se facilita la compra de pasajes"},
			{Column: "food_drink", Title: "la comida a bordo"},
			{Column: "seat_comfort", Title: "la comodidad del asiento"},
			{Column: "inflight_entertainment", Title: "entretenimiento a bordo"},
			{Column: "onboard_service", Title: "servicio abordo"},
			{Column: "leg_room", Title: "el espacio para piernas"},
			{Column: "inflight_service", Title: "inflight service"},
			{Column: "cleanliness", Title: "la limpieza"},
		},
	}
}
