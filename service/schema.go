package service

import (
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const analysisSystemPrompt = `Actúa como un/a supervisor/a clínico/a experto/a en infancia vulnerada y auditoría forense de expedientes del Poder Judicial Chileno (Tribunales de Familia).

**INSTRUCCIÓN CRÍTICA DE PROCESAMIENTO:**
Realiza una lectura **EXHAUSTIVA Y DETALLADA** de todo el documento. Tu prioridad es la **COMPLETITUD** de la información. No resumas si eso implica perder nombres, fechas exactas o detalles sutiles.

**FILTRO DE POBLACIÓN OBJETIVO (MANDATORIO):**
Al extraer los datos, debes aplicar el siguiente filtro estricto:
1. **CRITERIO DE INCLUSIÓN:** Informar ÚNICAMENTE sobre los NNA (Niños, Niñas y Adolescentes) que han sido derivados o mantienen medida de protección vigente en **DCE SAN BERNARDO** (o programas residenciales de administración directa relacionados a esa ubicación específica).
2. **CRITERIO DE EXCLUSIÓN:** NO extraer datos ni generar fichas de NNA que hayan sido derivados exclusivamente a otros programas como **TIKUM**, PPF, PRM, u otras residencias, a menos que también tengan una medida simultánea en DCE San Bernardo.

Tus objetivos son:
1. **EXTRACCIÓN FORENSE:** Localizar cada dato solicitado con precisión quirúrgica (citando página y texto textual).
2. **ANÁLISIS ESTRATÉGICO:** Para el Dossier, no solo describas, **DISEÑA** una intervención evaluativa compleja.

--- DIRECTRICES DE EXTRACCIÓN ---

1. **IDENTIFICACIÓN DE NNA (APLICAR FILTRO DCE SAN BERNARDO):**
   - Busca la resolución judicial más reciente.
   - Extrae como Rol "NNA" solo a los que cumplan el criterio de inclusión.

2. **IDENTIFICACIÓN DEL ADULTO RESPONSABLE:**
   - Identifica quién tiene el cuidado personal actual o quién es el adulto protector principal.
   - Si hay dudas sobre la competencia parental, regístralo en "Observaciones".

3. **ANÁLISIS TÉCNICO (DOSSIER - 10 DIMENSIONES):**
   - **Contenido:** Debe ser rico en detalles. Si el expediente menciona un episodio de violencia, describe: quién, cuándo, cómo y qué consecuencias hubo.
   - **Estrategia (IMPORTANTE):** Piensa paso a paso. ¿Qué harías tú como perito? Ej: "1. Solicitar antecedentes escolares", "2. Entrevista reservada para evaluar x", "3. Aplicar escala de parentalidad".
   - **Herramientas:** Sé técnico. Sugiere instrumentos reales (NCFAS-G, PSI, E2P, Test de Rorschach, Hora de Juego, Genograma Trigeneracional).

4. **MATRIZ DE DATOS:**
   - RIT, Fechas, Rut y Nombres deben ser exactos.
   - Si un dato aparece en múltiples páginas, cita la ocurrencia más relevante o reciente.

La respuesta debe seguir estrictamente el siguiente esquema JSON, sin texto adicional fuera del JSON.
`

func sourcedValueSchema(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: desc,
		Properties: map[string]*genai.Schema{
			"value": {Type: genai.TypeString, Description: "El dato extraído con el máximo detalle posible."},
			"page":  {Type: genai.TypeInteger, Description: "Número de página donde aparece (1-indexed). 0 si no existe."},
			"quote": {Type: genai.TypeString, Description: "Cita textual exacta del documento que respalda el dato."},
		},
		Required: []string{"value", "page", "quote"},
	}
}

func dossierItemSchema(desc string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: desc,
		Properties: map[string]*genai.Schema{
			"content":  {Type: genai.TypeString, Description: "Análisis factual detallado y extenso de la dimensión."},
			"strategy": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Pasos secuenciales detallados para evaluar esta dimensión."},
			"tools":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Nombres técnicos de instrumentos o técnicas sugeridas."},
		},
		Required: []string{"content", "strategy", "tools"},
	}
}

// analysisResponseSchema is the structured-output contract sent to the model.
func analysisResponseSchema() *genai.Schema {
	person := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"role":          sourcedValueSchema("Rol estandarizado (NNA, Madre, Padre, Abuela Materna, Agresor, etc)."),
			"name":          sourcedValueSchema(""),
			"rut":           sourcedValueSchema(""),
			"dob":           sourcedValueSchema(""),
			"phones":        sourcedValueSchema(""),
			"address":       sourcedValueSchema(""),
			"link":          sourcedValueSchema(""),
			"participation": sourcedValueSchema(""),
			"observations":  sourcedValueSchema(""),
			"nationality":   sourcedValueSchema("Nacionalidad."),
		},
		Required: []string{"role", "name", "rut", "nationality"},
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"rit":                  sourcedValueSchema("RIT de la causa (Ej: P-1234-2024)."),
			"tribunal":             sourcedValueSchema("Tribunal competente (Ej: Juzgado de Familia de San Bernardo)."),
			"causeType":            sourcedValueSchema("Materia o tipo de causa (Ej: Medida de Protección)."),
			"denunciant":           sourcedValueSchema("Nombre completo de quien realiza la denuncia o requerimiento."),
			"complaintMethod":      sourcedValueSchema("Vía de ingreso (Ej: Oficio, Parte Policial, Demanda)."),
			"complaintDate":        sourcedValueSchema("Fecha exacta de la denuncia o inicio de causa."),
			"receivingInstitution": sourcedValueSchema("Institución que acogió el requerimiento inicial (Carabineros, PDI, OPD)."),
			"motive":               sourcedValueSchema("Motivo detallado y extenso de la vulneración o requerimiento."),
			"facts":                sourcedValueSchema("Relato circunstanciado de los hechos constitutivos de vulneración."),
			"measures":             sourcedValueSchema("Medidas cautelares o decretadas por el tribunal."),
			"people":               {Type: genai.TypeArray, Items: person},
			"citations": {Type: genai.TypeArray, Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":   sourcedValueSchema(""),
					"date":   sourcedValueSchema(""),
					"motive": sourcedValueSchema(""),
				},
			}},
			"hearings": {Type: genai.TypeArray, Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date":      sourcedValueSchema(""),
					"time":      sourcedValueSchema(""),
					"type":      sourcedValueSchema(""),
					"attendees": sourcedValueSchema(""),
					"motive":    sourcedValueSchema(""),
					"tribunal":  sourcedValueSchema(""),
				},
			}},
			"chronology": {Type: genai.TypeArray, Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date":  sourcedValueSchema(""),
					"event": sourcedValueSchema(""),
				},
			}},
			"dossier": {
				Type:        genai.TypeObject,
				Description: "Análisis técnico estructurado en 10 dimensiones.",
				Properties: map[string]*genai.Schema{
					"identification":       dossierItemSchema("1. Identificación del NNA"),
					"typologies":           dossierItemSchema("2. Tipologías de Maltrato"),
					"gravity":              dossierItemSchema("3. Nivel de Gravedad"),
					"careNeeds":            dossierItemSchema("4. Necesidades de Cuidado"),
					"impact":               dossierItemSchema("5. Impacto Biopsicosocial"),
					"methodologies":        dossierItemSchema("6. Metodologías de Observación"),
					"parentalCapabilities": dossierItemSchema("7. Capacidades Parentales"),
					"riskFactors":          dossierItemSchema("8. Factores de Riesgo y Protectores"),
					"synthesis":            dossierItemSchema("9. Síntesis Técnica"),
					"warnings":             dossierItemSchema("10. Advertencias Técnicas"),
				},
				Required: []string{"identification", "typologies", "gravity", "careNeeds", "impact", "methodologies", "parentalCapabilities", "riskFactors", "synthesis", "warnings"},
			},
			"technicalAnalysis": {Type: genai.TypeString, Description: "Resumen ejecutivo legal del caso."},
			"missingInfo":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		},
		Required: []string{"rit", "people", "motive", "facts", "tribunal", "dossier"},
	}
}

// analysisCheckSchema mirrors the top-level shape of the response contract.
// Validation against it is advisory: normalization backfills missing leaves,
// so a violation is logged, never fatal.
const analysisCheckSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["rit", "people", "motive", "facts", "tribunal", "dossier"],
  "properties": {
    "rit": {"type": "object"},
    "tribunal": {"type": "object"},
    "motive": {"type": "object"},
    "facts": {"type": "object"},
    "people": {"type": "array", "items": {"type": "object"}},
    "citations": {"type": "array"},
    "hearings": {"type": "array"},
    "chronology": {"type": "array"},
    "dossier": {
      "type": "object",
      "required": ["identification", "typologies", "gravity", "careNeeds", "impact", "methodologies", "parentalCapabilities", "riskFactors", "synthesis", "warnings"]
    }
  }
}`

func compileAnalysisCheckSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("analysis.json", strings.NewReader(analysisCheckSchema)); err != nil {
		return nil, err
	}
	return c.Compile("analysis.json")
}
