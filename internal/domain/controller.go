package domain

import "fmt"

// Defaults del controller. Ver config.SimulatorConfig para los overrides.
const (
	DefaultBuySize           = 10.0
	DefaultSafetyMargin      = 0.99
	DefaultMinPriceThreshold = 0.05

	// cheapHysteresis evita oscilar sobre ruido: un lado solo es "barato"
	// si cae más de medio céntimo por debajo de su media reciente.
	cheapHysteresis = 0.005
)

// Acciones canónicas que el controller reporta por tick.
const (
	ActionHold              = "Hold"
	ActionInsufficientFunds = "Insufficient Funds"
	ActionNoData            = "No Data"
	ActionNoLiquidity       = "No liquidity"
)

// Controller decide por tick si comprar YES, comprar NO, o mantener.
// Es una función de decisión pura: no muta el ledger — el driver aplica
// la compra si Decision.Buy es true.
type Controller struct {
	// BuySize son las shares por compra.
	BuySize float64
	// SafetyMargin es el techo del pair cost proyectado: comprar solo si
	// el coste medio del par tras la compra queda por debajo.
	SafetyMargin float64
	// MinPriceThreshold excluye precios casi resueltos o sin liquidez
	// útil en el borde del rango.
	MinPriceThreshold float64
}

// NewController crea un controller con los defaults de producción.
func NewController() Controller {
	return Controller{
		BuySize:           DefaultBuySize,
		SafetyMargin:      DefaultSafetyMargin,
		MinPriceThreshold: DefaultMinPriceThreshold,
	}
}

// Decision es el resultado de evaluar un tick.
type Decision struct {
	Buy    bool
	Side   TradeSide
	Price  float64
	Action string
}

// Decide evalúa un tick. El lado YES se chequea SIEMPRE antes que NO y son
// mutuamente excluyentes: si YES es barato, NO no se evalúa este tick aunque
// el chequeo de seguridad rechace la compra de YES.
//
// Una compra se ejecuta si:
//  1. el precio está por debajo de la media reciente menos la histéresis,
//     y no por debajo de MinPriceThreshold;
//  2. hay cash para cubrirla;
//  3. el pair cost proyectado tras la compra queda bajo SafetyMargin —
//     salvo que el lado contrario no tenga posición: abrir la primera
//     pata de un par está siempre permitido (no hay nada que proteger).
func (c Controller) Decide(priceYes, priceNo, avgYes, avgNo float64, pos Position, cash float64) Decision {
	cheapYes := priceYes < avgYes-cheapHysteresis && priceYes >= c.MinPriceThreshold
	cheapNo := priceNo < avgNo-cheapHysteresis && priceNo >= c.MinPriceThreshold

	if cheapYes {
		cost := priceYes * c.BuySize
		if cash < cost {
			return Decision{Action: ActionInsufficientFunds}
		}

		projectedAvg := (pos.CostBasisYes + cost) / (pos.QtyYes + c.BuySize)
		projectedPair := projectedAvg + pos.AvgCostNo()

		if pos.QtyNo == 0 || projectedPair < c.SafetyMargin {
			return Decision{
				Buy:    true,
				Side:   SideYes,
				Price:  priceYes,
				Action: fmt.Sprintf("Bought YES @ %.3f", priceYes),
			}
		}
		return Decision{Action: ActionHold}
	}

	if cheapNo {
		cost := priceNo * c.BuySize
		if cash < cost {
			return Decision{Action: ActionInsufficientFunds}
		}

		projectedAvg := (pos.CostBasisNo + cost) / (pos.QtyNo + c.BuySize)
		projectedPair := pos.AvgCostYes() + projectedAvg

		if pos.QtyYes == 0 || projectedPair < c.SafetyMargin {
			return Decision{
				Buy:    true,
				Side:   SideNo,
				Price:  priceNo,
				Action: fmt.Sprintf("Bought NO @ %.3f", priceNo),
			}
		}
		return Decision{Action: ActionHold}
	}

	return Decision{Action: ActionHold}
}
