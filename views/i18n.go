package views

import site "github.com/monynha/site"

// messages holds the interface strings. Content itself is bilingual in the
// database; these only cover the chrome around it.
var messages = map[string][2]string{
	// pt, en
	"skip_to_content":   {"Pular para o conteúdo", "Skip to content"},
	"language":          {"Idioma", "Language"},
	"read_more":         {"Ler mais", "Read more"},
	"latest_posts":      {"Últimos artigos", "Latest posts"},
	"all_posts":         {"Todos os artigos", "All posts"},
	"featured_projects": {"Projetos", "Projects"},
	"all_projects":      {"Ver todos os projetos", "See all projects"},
	"no_posts":          {"Nenhum artigo publicado ainda.", "No posts published yet."},
	"no_projects":       {"Nenhum projeto ainda.", "No projects yet."},
	"no_docs":           {"Nenhuma documentação publicada ainda.", "No documentation published yet."},
	"all_categories":    {"Todas", "All"},
	"by":                {"por", "by"},
	"published_on":      {"Publicado em", "Published on"},
	"related_posts":     {"Artigos relacionados", "Related posts"},
	"comments":          {"Comentários", "Comments"},
	"no_comments":       {"Seja o primeiro a comentar.", "Be the first to comment."},
	"leave_comment":     {"Deixe um comentário", "Leave a comment"},
	"name":              {"Nome", "Name"},
	"email_optional":    {"E-mail (opcional, não publicado)", "Email (optional, not published)"},
	"comment":           {"Comentário", "Comment"},
	"send":              {"Enviar", "Send"},
	"comment_sent":      {"Obrigado! Seu comentário será publicado após aprovação.", "Thanks! Your comment will appear once approved."},
	"docs":              {"Documentação", "Documentation"},
	"project_docs":      {"Documentação do projeto", "Project documentation"},
	"back_to_project":   {"Voltar ao projeto", "Back to project"},
	"search":            {"Buscar", "Search"},
	"search_prompt":     {"Buscar artigos, projetos e documentação", "Search posts, projects and docs"},
	"search_results":    {"Resultados para", "Results for"},
	"search_empty":      {"Nenhum resultado encontrado.", "No results found."},
	"search_hint":       {"Digite um termo para buscar.", "Type something to search."},
	"type_blog_post":    {"Artigo", "Post"},
	"type_project":      {"Projeto", "Project"},
	"type_doc":          {"Documentação", "Doc"},
	"not_found":         {"Página não encontrada", "Page not found"},
	"not_found_text":    {"O endereço que você procurou não existe ou foi movido.", "The page you are looking for does not exist or was moved."},
	"server_error":      {"Algo deu errado", "Something went wrong"},
	"server_error_text": {"Tente novamente em alguns instantes.", "Please try again in a moment."},
	"back_home":         {"Voltar ao início", "Back to home"},
	"rss":               {"Feed RSS", "RSS feed"},
	"rights":            {"Todos os direitos reservados.", "All rights reserved."},
}

// T returns the interface string for key in loc. Unknown keys are returned
// as-is so a missing translation is visible instead of blank.
func T(loc site.Locale, key string) string {
	m, ok := messages[key]
	if !ok {
		return key
	}
	if loc == site.LocaleEN {
		return m[1]
	}
	return m[0]
}
