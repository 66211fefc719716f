package terminal

// 终端网关 HTTP API 的载荷定义
// 网关以浮点数传输价格，入界后立即转为 decimal

type loginRequest struct {
	Login    int64  `json:"login"`
	Password string `json:"password"`
	Server   string `json:"server"`
}

type accountPayload struct {
	Login        int64   `json:"login"`
	Server       string  `json:"server"`
	Currency     string  `json:"currency"`
	Balance      float64 `json:"balance"`
	Equity       float64 `json:"equity"`
	Margin       float64 `json:"margin"`
	MarginFree   float64 `json:"margin_free"`
	MarginLevel  float64 `json:"margin_level"`
	Leverage     int     `json:"leverage"`
	TradeAllowed bool    `json:"trade_allowed"`
}

type tickPayload struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Time   int64   `json:"time"`
	Volume int64   `json:"volume"`
}

type symbolPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Visible     bool    `json:"visible"`
	Tradable    bool    `json:"tradable"`
	Bid         float64 `json:"bid"`
	Ask         float64 `json:"ask"`
	Spread      int     `json:"spread"`
	Digits      int     `json:"digits"`
	Point       float64 `json:"point"`
	VolumeMin   float64 `json:"volume_min"`
	VolumeMax   float64 `json:"volume_max"`
	VolumeStep  float64 `json:"volume_step"`
}

type symbolsPayload struct {
	Symbols []symbolPayload `json:"symbols"`
}

type ratePayload struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume int64   `json:"tick_volume"`
}

type ratesPayload struct {
	Rates []ratePayload `json:"rates"`
}

type orderRequest struct {
	Symbol     string  `json:"symbol"`
	Type       string  `json:"type"`
	Volume     float64 `json:"volume"`
	Price      float64 `json:"price"`
	Deviation  int     `json:"deviation"`
	StopLoss   float64 `json:"sl,omitempty"`
	TakeProfit float64 `json:"tp,omitempty"`
	Comment    string  `json:"comment,omitempty"`
	Magic      int64   `json:"magic"`
	TimeType   string  `json:"type_time"`
	Filling    string  `json:"type_filling"`
	Position   int64   `json:"position,omitempty"`
}

type orderResultPayload struct {
	Retcode int     `json:"retcode"`
	Order   int64   `json:"order"`
	Deal    int64   `json:"deal"`
	Price   float64 `json:"price"`
	Volume  float64 `json:"volume"`
	Comment string  `json:"comment"`
}

type positionPayload struct {
	Ticket       int64   `json:"ticket"`
	Symbol       string  `json:"symbol"`
	Type         string  `json:"type"`
	Volume       float64 `json:"volume"`
	PriceOpen    float64 `json:"price_open"`
	PriceCurrent float64 `json:"price_current"`
	Profit       float64 `json:"profit"`
	Swap         float64 `json:"swap"`
	Comment      string  `json:"comment"`
	Time         int64   `json:"time"`
}

type positionsPayload struct {
	Positions []positionPayload `json:"positions"`
}

type errorPayload struct {
	Error string `json:"error"`
}
