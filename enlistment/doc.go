// Package enlistment fornece o adapter HTTP (net/http) do serviço de matrícula.
//
// Visão geral (camadas):
//
//   - domain: turmas, alunos e a regra de admissão com lock por turma
//   - application: casos de uso (matricular, cancelar, listar, throttle) sem net/http
//   - infra: catálogo em memória, carga CSV, token bucket, fila por turma, estatísticas
//   - enlistment (este pacote): handlers JSON + middlewares + tradução de Outcome para status
//
// Fluxo de uma matrícula:
//
//  1. Middleware de throttle extrai o aluno da URL e decide (429 se bloqueado)
//  2. Handler chama EnlistmentService.Enlist, que entra na fila da turma
//  3. Fila cheia até o timeout vira Outcome busy (503 + Retry-After)
//  4. O status HTTP vem do Outcome: 201, 409, 422, 404, 503 ou 400
//
// Variáveis de ambiente do binário (cmd/enlistd) controlam o comportamento,
// como THROTTLE_RPS, THROTTLE_BURST, SECTION_QUEUE_MAX e SECTION_QUEUE_TIMEOUT.
package enlistment
