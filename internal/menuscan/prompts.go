package menuscan

// validateMenuPrompt asks the vision model for a yes/no judgement on
// whether the photo is a restaurant menu.
const validateMenuPrompt = `Analiza esta imagen y determina si es una carta o menú de restaurante.

Una carta válida contiene:
- Lista de platos o comidas
- Nombres de platos legibles
- Puede tener precios, descripciones, secciones

NO es válida si es:
- Una foto de persona
- Un documento no relacionado con comida
- Un objeto o paisaje
- Texto ilegible o borroso

Responde ÚNICAMENTE en formato JSON:
{
  "isMenu": true o false,
  "reason": "breve explicación"
}`

// extractDishesPrompt asks for dish names only: no prices, no drinks, no
// section headers.
const extractDishesPrompt = `Extrae ÚNICAMENTE los nombres de los platos de esta carta de restaurante.

REGLAS ESTRICTAS:
- Solo nombres de platos (NO precios, NO símbolos €, $)
- NO incluir descripciones largas
- NO incluir bebidas (solo platos de comida)
- Si un plato tiene variaciones, lista solo el nombre base
- Máximo 30 platos

EJEMPLOS:
✅ "Pollo a la plancha"
✅ "Ensalada César"
✅ "Paella mixta"
❌ "Pollo a la plancha ........ 12€"
❌ "Coca-Cola"
❌ "Entrantes"

Responde ÚNICAMENTE en formato JSON:
{
  "dishes": ["Plato 1", "Plato 2", "Plato 3"]
}`

// Caller-facing terminal messages for the two negative outcomes.
const (
	msgNotAMenu = "Esta imagen no parece ser una carta de restaurante. Por favor, fotografía un menú con lista de platos."
	msgNoDishes = "No se pudieron identificar platos en esta imagen. Asegúrate de que la foto sea clara y contenga texto legible."
)
