// Package application contém os casos de uso de matrícula: matricular,
// cancelar, listar, além do throttle por aluno e da fila de tentativas por
// turma.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: EnlistmentService.Enlist(ctx, aluno, turma) retorna um Receipt com o
// Outcome da tentativa.
package application
