package notifier

// shippedCopy is the localized text of the shipped notification. The store
// ships in four languages; Spanish is the default when the order carries an
// unknown language tag.
type shippedCopy struct {
	Subject  string
	Title    string
	Greeting string
	Intro    string
	Carrier  string
	Tracking string
	Items    string
	Outro    string
}

var shippedTranslations = map[string]shippedCopy{
	"es": {
		Subject:  "¡Tu pedido #{id} ha sido enviado!",
		Title:    "¡Pedido Enviado!",
		Greeting: "Hola, {name}",
		Intro:    "¡Buenas noticias! Tu pedido #{id} ya va en camino.",
		Carrier:  "Empresa de Transporte:",
		Tracking: "Número de Guía:",
		Items:    "Lo que ordenaste:",
		Outro:    "Pronto estarás disfrutando de tu compra.",
	},
	"en": {
		Subject:  "Your order #{id} has been shipped!",
		Title:    "Order Shipped!",
		Greeting: "Hello, {name}",
		Intro:    "Good news! Your order #{id} is on its way.",
		Carrier:  "Carrier:",
		Tracking: "Tracking Number:",
		Items:    "What you ordered:",
		Outro:    "You will be enjoying your purchase soon.",
	},
	"fr": {
		Subject:  "Votre commande #{id} a été expédiée !",
		Title:    "Commande Expédiée !",
		Greeting: "Bonjour, {name}",
		Intro:    "Bonne nouvelle ! Votre commande #{id} est en route.",
		Carrier:  "Transporteur :",
		Tracking: "Numéro de Suivi :",
		Items:    "Votre commande :",
		Outro:    "Vous profiterez bientôt de votre achat.",
	},
	"pt": {
		Subject:  "Seu pedido #{id} foi enviado!",
		Title:    "Pedido Enviado!",
		Greeting: "Olá, {name}",
		Intro:    "Boas notícias! Seu pedido #{id} está a caminho.",
		Carrier:  "Transportadora:",
		Tracking: "Código de Rastreio:",
		Items:    "O que você pediu:",
		Outro:    "Em breve você estará aproveitando sua compra.",
	},
}

func translationFor(language string) shippedCopy {
	if t, ok := shippedTranslations[language]; ok {
		return t
	}
	return shippedTranslations["es"]
}
