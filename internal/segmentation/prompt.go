package segmentation

import (
	"fmt"
	"strings"

	"github.com/antonio-moreira/mupetalk/pkg/utils"
)

// FormatQuestionList renders the question table as one line per question in
// the wire format the collaborator expects: "{id} - {mm:ss} - {text}".
func FormatQuestionList(questions []Question) string {
	lines := make([]string, 0, len(questions))
	for _, q := range questions {
		lines = append(lines, fmt.Sprintf("%d - %s - %s", q.ID, utils.FormatTimestamp(q.StartTime), q.Text))
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt assembles the segmentation instruction prompt from the
// reference interview script and the formatted question list.
func BuildPrompt(script string, questions []Question) string {
	return fmt.Sprintf(`Você é um especialista em história oral e análise de transcrições.
Sua tarefa é segmentar a transcrição de uma entrevista fornecida abaixo de acordo com o Roteiro de Perguntas oficial.

REGRAS DE PROCESSAMENTO:
1. Analise o conteúdo semântico de cada linha da transcrição para decidir a qual seção/subseção do roteiro ela pertence.
2. Se um tema fugir do roteiro (ex: falar de faculdade na seção errada), aloque-o na seção semanticamente mais próxima (ex: faculdade -> Escola/Formação).
3. CRUCIAL: Na saída, NÃO inclua o texto da pergunta. Retorne APENAS o 'id' e o 'timestamp' dentro da estrutura hierárquica correta.
4. Mantenha a ordem cronológica original das perguntas dentro dos grupos.
5. Não utilize caracteres de marcação Markdown (ex: #, ##, etc) nos títulos e subtítulos.

ROTEIRO BASE:
%s

TRANSCRIÇÃO PARA SEGMENTAR:
%s`, script, FormatQuestionList(questions))
}
