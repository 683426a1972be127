package sitemap

import (
	"fmt"
	"strings"

	"github.com/temoto/robotstxt"
)

// crawlers 为检查 robots.txt 时使用的常见爬虫。
var crawlers = []string{"*", "Googlebot", "Bingbot"}

// Robots 解析配置中的 robots.txt，返回最终写入的内容与需要提醒的问题（不阻断构建）。
// 开启 sitemap 且未声明 Sitemap 行时自动追加。
func Robots(content, siteURL string, withSitemap bool) (string, []string) {
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	var warns []string
	data, err := robotstxt.FromString(content)
	if err != nil {
		return content, []string{fmt.Sprintf("robots.txt 无法解析：%v", err)}
	}
	for _, agent := range crawlers {
		if !data.TestAgent("/", agent) {
			warns = append(warns, fmt.Sprintf("robots.txt 禁止 %s 访问首页", agent))
		}
	}
	if withSitemap && len(data.Sitemaps) == 0 {
		if !strings.HasSuffix(siteURL, "/") {
			siteURL += "/"
		}
		content += "Sitemap: " + siteURL + "sitemap.xml\n"
	}
	return content, warns
}
