package ngavoid

import (
	"regexp"
	"strings"
)

// symbolPattern covers dingbats, astral pictographs, keycaps and the wide
// symbol blocks that filters tend to flag.
var symbolPattern = regexp.MustCompile(strings.Join([]string{
	`[\x{2700}-\x{27BF}]`,
	`[\x{10000}-\x{10FFFF}]`,
	`[#-9]\x{FE0F}?\x{20E3}`,
	`\x{3299}`, `\x{3297}`,
	`[\x{3004}\x{3016}-\x{301C}\x{301E}\x{3020}-\x{303F}]`,
	`\x{24C2}`,
	`[\x{0081}-\x{009F}\x{00A1}-\x{00A4}\x{00A6}\x{00A9}-\x{00AF}\x{00B2}\x{00B3}\x{00B5}\x{00B7}-\x{00D6}\x{00D8}-\x{00F6}\x{00F8}-\x{00FF}]`,
	`[\x{2000}-\x{200F}\x{2011}-\x{2014}\x{2016}\x{2017}\x{201A}\x{201B}\x{201E}\x{201F}\x{2022}-\x{2024}\x{2027}-\x{202F}\x{2031}\x{2034}-\x{203A}\x{203C}\x{203D}\x{203F}-\x{206F}]`,
	`[\x{2070}-\x{20CF}]`,
	`[\x{2201}\x{2204}-\x{2206}\x{2209}\x{220A}\x{220C}-\x{2210}\x{2213}-\x{2219}\x{221B}\x{221C}\x{2221}-\x{2224}\x{2226}\x{222D}\x{222F}-\x{2233}\x{2236}-\x{223C}\x{223E}-\x{2251}\x{2253}-\x{225F}\x{2262}-\x{2265}\x{2268}\x{2269}\x{226C}-\x{2281}\x{2284}\x{2285}\x{2288}-\x{22A4}\x{22A6}-\x{22BE}\x{22C0}-\x{22FF}]`,
	`[\x{2440}-\x{245F}]`,
	`[\x{2474}-\x{24FF}]`,
	`[\x{2504}-\x{250B}\x{250D}\x{250E}\x{2511}\x{2512}\x{2515}\x{2516}\x{2519}\x{251A}\x{251E}\x{251F}\x{2521}\x{2522}\x{2526}\x{2527}\x{2529}\x{252A}\x{252D}\x{252E}\x{2531}\x{2532}\x{2535}\x{2536}\x{2539}\x{253A}\x{253D}\x{253E}\x{2540}\x{2541}\x{2543}-\x{254A}\x{254C}-\x{257F}]`,
	`[\x{25A2}-\x{25B1}\x{25B4}-\x{25BB}\x{25BE}-\x{25C5}\x{25C8}-\x{25CA}\x{25CC}\x{25CD}\x{25D0}-\x{25EE}\x{25F0}-\x{25FF}]`,
	`\x{00A9}`, `\x{00AE}`, `\x{2122}`, `\x{2139}`,
	`[\x{2600}-\x{2604}\x{2607}-\x{263F}\x{2641}\x{2643}-\x{2669}\x{266B}-\x{266C}\x{266E}\x{2670}-\x{26FF}]`,
	`[\x{2B05}\x{2B06}\x{2B07}\x{2B1B}\x{2B1C}\x{2B50}\x{2B55}]`,
	`[\x{231A}\x{231B}\x{2328}\x{23CF}]`,
	`[\x{23E9}-\x{23F3}]`,
	`[\x{23F8}-\x{23FA}]`,
	`[\x{2934}\x{2935}]`,
	`[\x{2194}-\x{21D1}\x{21D3}\x{21D5}-\x{21FF}]`,
	`[\x{2FF0}-\x{2FFF}]`,
	`[\x{A640}-\x{A69F}]`,
	`[\x{0100}-\x{0390}]`,
	`[\x{03CA}-\x{0400}]`,
	`[\x{0452}-\x{1FFF}]`,
	`[\x{FE70}-\x{FEFF}]`,
	`[\x{A000}-\x{E3FF}]`,
	`[\x{FB00}-\x{FEFF}]`,
}, "|"))
