package handler

import (
	tele "gopkg.in/telebot.v3"
)

const helpText = "🃏 UNO 记分本\n\n" +
	"记分 (分数按 /players 的顺序):\n" +
	"/score [日期] [类型] 分数1 分数2 ... - 记录一局\n" +
	"/open [日期] [类型] 分数1 分数2 ... - 记录一局公开局 (不计分)\n" +
	"\n查看:\n" +
	"/recent [n] - 最近对局\n" +
	"/table [年份] - 年度成绩表\n" +
	"/daily [日期] - 日排行\n" +
	"/yearly [年份] - 年排行\n" +
	"/summary [年份] - 年度统计\n" +
	"/winloss [日期] - 胜负次数\n" +
	"/players - 玩家名单\n" +
	"\n修改:\n" +
	"/winner <对局id> <玩家> - 指定同为 0 分时的赢家 (也可点击记录下方的 👑 按钮)\n" +
	"/daywinner <日期> <玩家> - 指定当日赢家\n" +
	"/yearwinner <年份> <玩家> - 指定年度赢家\n" +
	"/order daily|yearly <日期或年份> <玩家...> - 同分排序\n" +
	"/type <对局id> - 切换类型\n" +
	"/fund [金额] - 查看或设置基金\n" +
	"/export - 导出 JSON\n" +
	"发送 .csv / .xlsx / .json 文件即可导入\n" +
	"\n管理员:\n" +
	"/addplayer /removeplayer /delete /deletedate /deleteyear /clear\n" +
	"\n日期: 2025-01-19、1/19、today、yesterday\n" +
	"类型: パねぇ！(panee)、パーチー(party)、普通(normal)"

// HandleHelp handles the /start and /help commands.
func HandleHelp(c tele.Context) error {
	return c.Reply(helpText)
}
